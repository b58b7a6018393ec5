// Package pipeline orchestrates the identify-and-explain and follow-up
// flows across the vision, knowledge, narration, speech, and session
// collaborators.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pillbuddy-backend/internal/events"
	"pillbuddy-backend/internal/models"
	"pillbuddy-backend/internal/observability/logging"
	"pillbuddy-backend/internal/observability/metrics"
	"pillbuddy-backend/internal/service/drugname"
	"pillbuddy-backend/internal/service/knowledge"
	"pillbuddy-backend/internal/service/session"
)

// Request-rejecting errors. Everything else in the pipeline degrades
// rather than failing the request.
var (
	ErrEmptyImage     = errors.New("empty image payload")
	ErrNoPillDetected = errors.New("no pill identified in image")
	ErrNoSession      = errors.New("no identification recorded for session")
)

// Identifier yields the best pill candidate for an image, nil on miss.
type Identifier interface {
	Identify(ctx context.Context, image []byte) *models.PillCandidate
}

// Registry looks up authoritative drug records.
type Registry interface {
	Lookup(ctx context.Context, name string) ([]models.DrugRecord, error)
}

// Narrator produces sanitized scripts; it never fails, only degrades.
type Narrator interface {
	Summarize(ctx context.Context, records []models.DrugRecord) string
	SummarizeFallback(ctx context.Context, name string) string
	Answer(ctx context.Context, name, question string, records []models.DrugRecord) string
}

// Speech synthesizes audio; nil means synthesis failed.
type Speech interface {
	Synthesize(ctx context.Context, text string) []byte
}

// Publisher emits identification events; failures never affect responses.
type Publisher interface {
	PublishIdentified(ctx context.Context, key string, event any) error
	PublishFollowUp(ctx context.Context, key string, event any) error
}

// IdentifyResult is the outcome of one identification.
type IdentifyResult struct {
	SessionID string
	PillName  string
	Script    string
	Audio     []byte
}

// FollowUpResult is the outcome of one answered follow-up.
type FollowUpResult struct {
	PillName string
	Question string
	Answer   string
	Audio    []byte
}

// Pipeline wires the collaborators into the two user-facing operations.
type Pipeline struct {
	vision    Identifier
	registry  Registry
	narrator  Narrator
	speech    Speech
	sessions  session.Store
	publisher Publisher
	metrics   *metrics.Metrics
}

// New constructs a Pipeline. All collaborators are required except the
// publisher, which may be nil.
func New(vision Identifier, registry Registry, narrator Narrator, speech Speech, sessions session.Store, publisher Publisher) *Pipeline {
	if publisher == nil {
		publisher = events.New(nil)
	}
	return &Pipeline{
		vision:    vision,
		registry:  registry,
		narrator:  narrator,
		speech:    speech,
		sessions:  sessions,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
	}
}

// Identify runs the full identify-and-explain flow. An empty session id
// mints a fresh one, returned in the result.
func (p *Pipeline) Identify(ctx context.Context, sessionID string, image []byte) (*IdentifyResult, error) {
	p.metrics.IdentifyRequests.Inc()
	start := time.Now()
	defer func() { p.metrics.IdentifyDuration.Observe(time.Since(start).Seconds()) }()

	if len(image) == 0 {
		p.metrics.IdentifyRejected.WithLabelValues("empty_image").Inc()
		return nil, ErrEmptyImage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := logging.WithSession("pipeline", sessionID)

	candidate := p.vision.Identify(ctx, image)
	if candidate == nil {
		p.metrics.IdentifyRejected.WithLabelValues("no_pill").Inc()
		p.metrics.RecognitionMisses.Inc()
		return nil, ErrNoPillDetected
	}

	name := drugname.Normalize(candidate.Label)
	if name == "" {
		name = candidate.Label
	}

	records, source := p.resolve(ctx, name, logger)

	var script string
	if len(records) > 0 {
		script = p.narrator.Summarize(ctx, records)
	} else {
		script = p.narrator.SummarizeFallback(ctx, name)
	}

	if err := p.sessions.Set(ctx, sessionID, name); err != nil {
		// The response is still valid; only follow-ups for this
		// session are affected.
		logger.Error().Err(err).Msg("Failed to persist session pill name")
	}

	audio := p.speech.Synthesize(ctx, script)

	p.metrics.IdentifySuccess.Inc()
	logger.Info().
		Str("pillName", name).
		Str("knowledgeSource", source).
		Bool("audio", audio != nil).
		Msg("Identification completed")

	p.publishIdentified(ctx, sessionID, candidate, name, source, audio != nil)

	return &IdentifyResult{
		SessionID: sessionID,
		PillName:  name,
		Script:    script,
		Audio:     audio,
	}, nil
}

// FollowUp answers a question about the pill previously identified in
// this session.
func (p *Pipeline) FollowUp(ctx context.Context, sessionID, question string) (*FollowUpResult, error) {
	p.metrics.FollowUpRequests.Inc()
	logger := logging.WithSession("pipeline", sessionID)

	name, ok, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("Session lookup failed")
		p.metrics.FollowUpNoSession.Inc()
		return nil, ErrNoSession
	}
	if !ok {
		p.metrics.FollowUpNoSession.Inc()
		return nil, ErrNoSession
	}

	records, source := p.resolve(ctx, name, logger)
	answer := p.narrator.Answer(ctx, name, question, records)
	audio := p.speech.Synthesize(ctx, answer)

	p.metrics.FollowUpSuccess.Inc()
	logger.Info().
		Str("pillName", name).
		Str("knowledgeSource", source).
		Bool("audio", audio != nil).
		Msg("Follow-up answered")

	p.publishFollowUp(ctx, sessionID, name, question, source, audio != nil)

	return &FollowUpResult{
		PillName: name,
		Question: question,
		Answer:   answer,
		Audio:    audio,
	}, nil
}

// resolve looks up registry records for a name. Any failure collapses
// into the fallback path; the cause is only logged so confirmed absence
// stays distinguishable from an outage in diagnostics.
func (p *Pipeline) resolve(ctx context.Context, name string, logger zerolog.Logger) ([]models.DrugRecord, string) {
	records, err := p.registry.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, knowledge.ErrNoMatch) {
			logger.Debug().Str("drugName", name).Msg("Registry has no record, using fallback knowledge")
		} else {
			logger.Warn().Err(err).Str("drugName", name).Msg("Registry lookup failed, using fallback knowledge")
		}
		return nil, "fallback"
	}
	if len(records) == 0 {
		return nil, "fallback"
	}
	return records, "registry"
}

func (p *Pipeline) publishIdentified(ctx context.Context, sessionID string, candidate *models.PillCandidate, name, source string, audio bool) {
	event := models.IdentifiedEvent{
		EventType:       "identified",
		SessionID:       sessionID,
		PillName:        name,
		RawLabel:        candidate.Label,
		Confidence:      candidate.Confidence,
		KnowledgeSource: source,
		AudioAvailable:  audio,
		Timestamp:       time.Now().UnixMilli(),
	}
	if err := p.publisher.PublishIdentified(ctx, sessionID, event); err != nil {
		logger := logging.WithSession("pipeline", sessionID)
		logger.Warn().Err(err).Msg("Failed to publish identified event")
	}
}

func (p *Pipeline) publishFollowUp(ctx context.Context, sessionID, name, question, source string, audio bool) {
	event := models.FollowUpEvent{
		EventType:       "followup",
		SessionID:       sessionID,
		PillName:        name,
		Question:        question,
		KnowledgeSource: source,
		AudioAvailable:  audio,
		Timestamp:       time.Now().UnixMilli(),
	}
	if err := p.publisher.PublishFollowUp(ctx, sessionID, event); err != nil {
		logger := logging.WithSession("pipeline", sessionID)
		logger.Warn().Err(err).Msg("Failed to publish follow-up event")
	}
}
