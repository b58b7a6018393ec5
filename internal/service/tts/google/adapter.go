// Package google provides a Google Cloud Text-to-Speech adapter.
package google

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"pillbuddy-backend/internal/service/tts"
)

// Config holds voice selection for synthesis.
type Config struct {
	Voice        string
	LanguageCode string
}

// DefaultConfig returns the default voice configuration.
func DefaultConfig() Config {
	return Config{
		Voice:        "en-US-Neural2-C",
		LanguageCode: "en-US",
	}
}

// Adapter implements tts.Synthesizer using Google Cloud Text-to-Speech.
type Adapter struct {
	client *texttospeech.Client
	cfg    Config
}

var _ tts.Synthesizer = (*Adapter)(nil)

// New creates a new Google TTS adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Voice == "" {
		cfg = DefaultConfig()
	}
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create texttospeech client: %w", err)
	}
	return &Adapter{client: c, cfg: cfg}, nil
}

// Synthesize converts text to MP3 audio bytes using the configured voice.
func (a *Adapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := a.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: a.cfg.LanguageCode,
			Name:         a.cfg.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.client.Close()
}
