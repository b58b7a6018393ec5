// Package narration produces spoken-friendly scripts and answers from a
// generative-text model.
package narration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"pillbuddy-backend/internal/models"
	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/observability/metrics"
)

// ChatClient is the slice of the Ollama API the generator needs.
// *api.Client satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Config holds generator configuration.
type Config struct {
	OllamaURL string
	Model     string
	Timeout   time.Duration
}

// Generator turns drug records and questions into sanitized scripts.
// Generation failures degrade to a fixed apology script, never an error.
type Generator struct {
	client  ChatClient
	model   string
	timeout time.Duration
	metrics *metrics.Metrics
}

// New creates a Generator backed by an Ollama chat endpoint.
func New(cfg Config) (*Generator, error) {
	parsed, err := url.Parse(cfg.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		client:  api.NewClient(base, http.DefaultClient),
		model:   cfg.Model,
		timeout: timeout,
		metrics: metrics.DefaultMetrics,
	}, nil
}

// NewWithClient creates a Generator with an injected chat client.
func NewWithClient(client ChatClient, model string, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
		metrics: metrics.DefaultMetrics,
	}
}

// Summarize produces the four-part authoritative summary script.
func (g *Generator) Summarize(ctx context.Context, records []models.DrugRecord) string {
	g.metrics.NarrationCalls.WithLabelValues("summary").Inc()
	return g.generate(ctx, summaryPrompt(records))
}

// SummarizeFallback produces the three-part general-knowledge summary
// with the mandatory disclaimer.
func (g *Generator) SummarizeFallback(ctx context.Context, name string) string {
	g.metrics.NarrationCalls.WithLabelValues("fallback").Inc()
	return g.generate(ctx, fallbackPrompt(name))
}

// Answer produces a follow-up answer. With records present the answer is
// grounded in them; without records it carries the disclaimer.
func (g *Generator) Answer(ctx context.Context, name, question string, records []models.DrugRecord) string {
	g.metrics.NarrationCalls.WithLabelValues("answer").Inc()
	if len(records) > 0 {
		return g.generate(ctx, answerPrompt(name, question, records))
	}
	return g.generate(ctx, answerFallbackPrompt(name, question))
}

func (g *Generator) generate(ctx context.Context, prompt string) string {
	logger := logging.WithProvider("narration", "ollama")
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	streamFalse := false
	req := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream: &streamFalse,
	}

	var content string
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	g.metrics.NarrationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.NarrationFailures.Inc()
		logger.Error().Err(err).Msg("Narration generation failed, returning apology script")
		return ApologyScript
	}
	if content == "" {
		g.metrics.NarrationFailures.Inc()
		logger.Error().Msg("Narration generation returned empty content")
		return ApologyScript
	}

	script, repaired := ensureClosing(sanitizeScript(content))
	if repaired {
		g.metrics.ClosingAppended.Inc()
		logger.Warn().Msg("Model omitted closing sentence, appended")
	}
	return script
}
