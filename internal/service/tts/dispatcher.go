package tts

import (
	"context"
	"time"

	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/observability/metrics"
)

// Dispatcher bounds concurrent synthesis calls and converts every
// provider failure into absent audio. Synthesis is the slowest external
// call in the pipeline; the semaphore keeps a slow provider from
// monopolizing outbound capacity.
type Dispatcher struct {
	synth   Synthesizer
	sem     chan struct{}
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewDispatcher wraps a Synthesizer with a concurrency bound and a
// per-call timeout.
func NewDispatcher(synth Synthesizer, maxConcurrent int, timeout time.Duration) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		synth:   synth,
		sem:     make(chan struct{}, maxConcurrent),
		timeout: timeout,
		metrics: metrics.DefaultMetrics,
	}
}

// Synthesize returns audio bytes, or nil when synthesis fails for any
// reason. Audio is all-or-nothing; no partial payloads are returned.
func (d *Dispatcher) Synthesize(ctx context.Context, text string) []byte {
	logger := logging.WithComponent("tts")
	d.metrics.SynthesisCalls.Inc()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-ctx.Done():
		d.metrics.SynthesisFailures.Inc()
		logger.Warn().Err(ctx.Err()).Msg("Synthesis slot wait timed out")
		return nil
	}

	audio, err := d.synth.Synthesize(ctx, text)
	d.metrics.SynthesisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		d.metrics.SynthesisFailures.Inc()
		logger.Warn().Err(err).Msg("Speech synthesis failed, returning text-only")
		return nil
	}
	if len(audio) == 0 {
		d.metrics.SynthesisFailures.Inc()
		logger.Warn().Msg("Speech synthesis produced no audio")
		return nil
	}
	return audio
}
