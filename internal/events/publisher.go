// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"pillbuddy-backend/internal/observability/metrics"
)

// Publisher publishes identification events to separate Kafka topics.
type Publisher struct {
	writerIdentified *kafka.Writer
	writerFollowUp   *kafka.Writer
	principal        string
	topicIdentified  string
	topicFollowUp    string
	enabled          bool
	metrics          *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers         []string
	TopicIdentified string
	TopicFollowUp   string
	Principal       string
	Enabled         bool
}

// New creates a new Kafka event publisher with separate topics for
// identification and follow-up events.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:       cfg.Principal,
			topicIdentified: cfg.TopicIdentified,
			topicFollowUp:   cfg.TopicFollowUp,
			enabled:         false,
			metrics:         m,
		}
	}

	// Custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerIdentified := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicIdentified,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerFollowUp := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicFollowUp,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicIdentified", cfg.TopicIdentified).
		Str("topicFollowUp", cfg.TopicFollowUp).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerIdentified: writerIdentified,
		writerFollowUp:   writerFollowUp,
		principal:        cfg.Principal,
		topicIdentified:  cfg.TopicIdentified,
		topicFollowUp:    cfg.TopicFollowUp,
		enabled:          true,
		metrics:          m,
	}
}

// PublishIdentified publishes an identification event keyed by session id.
func (p *Publisher) PublishIdentified(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerIdentified, p.topicIdentified, "identified", key, event)
}

// PublishFollowUp publishes a follow-up event keyed by session id.
func (p *Publisher) PublishFollowUp(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerFollowUp, p.topicFollowUp, "followup", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	err = writer.WriteMessages(ctx, msg)
	p.metrics.RecordPublish(topic, eventType, err, time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("Failed to publish event")
		return err
	}

	return nil
}

// Close closes the Kafka writers.
func (p *Publisher) Close() error {
	if p.writerIdentified != nil {
		if err := p.writerIdentified.Close(); err != nil {
			return err
		}
	}
	if p.writerFollowUp != nil {
		return p.writerFollowUp.Close()
	}
	return nil
}
