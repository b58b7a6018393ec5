// Package mock provides a mock TTS adapter for testing and local
// development without cloud credentials.
package mock

import (
	"context"
	"errors"
	"sync"

	"pillbuddy-backend/internal/service/tts"
)

// ErrSimulatedFailure is the error returned when failure mode is on.
var ErrSimulatedFailure = errors.New("simulated synthesis failure")

// Adapter implements tts.Synthesizer with deterministic fake audio.
type Adapter struct {
	mu     sync.Mutex
	fail   bool
	calls  int
	closed bool
}

var _ tts.Synthesizer = (*Adapter)(nil)

// New creates a new mock TTS adapter.
func New() *Adapter {
	return &Adapter{}
}

// SetFail toggles the simulated failure mode.
func (a *Adapter) SetFail(fail bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = fail
}

// Calls reports the number of synthesize calls received.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Synthesize returns a fake audio payload derived from the text, or an
// error when failure mode is on.
func (a *Adapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++

	if a.closed {
		return nil, errors.New("adapter closed")
	}
	if a.fail {
		return nil, ErrSimulatedFailure
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte("MOCK-AUDIO:"), []byte(text)...), nil
}

// Close marks the adapter closed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
