package models

// IdentifiedEvent is published after a successful identification.
type IdentifiedEvent struct {
	EventType       string  `json:"eventType"`
	SessionID       string  `json:"sessionId"`
	PillName        string  `json:"pillName"`
	RawLabel        string  `json:"rawLabel"`
	Confidence      float64 `json:"confidence"`
	KnowledgeSource string  `json:"knowledgeSource"` // registry or fallback
	AudioAvailable  bool    `json:"audioAvailable"`
	Timestamp       int64   `json:"timestamp"`
}

// FollowUpEvent is published after a successful follow-up answer.
type FollowUpEvent struct {
	EventType       string `json:"eventType"`
	SessionID       string `json:"sessionId"`
	PillName        string `json:"pillName"`
	Question        string `json:"question"`
	KnowledgeSource string `json:"knowledgeSource"`
	AudioAvailable  bool   `json:"audioAvailable"`
	Timestamp       int64  `json:"timestamp"`
}
