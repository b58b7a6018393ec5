// Package models defines the data structures shared across the pipeline.
package models

// PillCandidate is one classified pill produced by the vision pipeline.
type PillCandidate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// DrugRecord is one authoritative entry returned by the drug registry.
// Field names follow the registry's item schema.
type DrugRecord struct {
	ItemName   string `json:"itemName"`
	EntpName   string `json:"entpName"`
	Efficacy   string `json:"efcyQesitm"`
	Usage      string `json:"useMethodQesitm"`
	Warning    string `json:"atpnWarnQesitm"`
	Caution    string `json:"atpnQesitm"`
	Interact   string `json:"intrcQesitm"`
	SideEffect string `json:"seQesitm"`
	Storage    string `json:"depositMethodQesitm"`
}

// IdentifyResponse is the transport payload for a completed identification.
type IdentifyResponse struct {
	SessionID   string  `json:"session_id"`
	PillName    string  `json:"pill_name"`
	Script      string  `json:"script"`
	AudioBase64 *string `json:"audio_base64"`
}

// FollowUpRequest is the transport payload for a follow-up question.
type FollowUpRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// FollowUpResponse is the transport payload for an answered follow-up.
type FollowUpResponse struct {
	PillName    string  `json:"pill_name"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	AudioBase64 *string `json:"audio_base64"`
}

// SynthesizeRequest is the transport payload for raw speech synthesis.
type SynthesizeRequest struct {
	Text string `json:"text"`
}

// SynthesizeResponse carries the synthesized audio.
type SynthesizeResponse struct {
	AudioBase64 string `json:"audio_base64"`
}
