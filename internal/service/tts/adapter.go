// Package tts defines the interface for Text-to-Speech adapters.
package tts

import "context"

// Synthesizer defines the interface for TTS providers (Google, Azure, mock).
type Synthesizer interface {
	// Synthesize converts text into audio bytes with the provider's
	// configured voice.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// Close releases provider resources.
	Close() error
}
