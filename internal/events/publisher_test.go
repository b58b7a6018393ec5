package events

import (
	"context"
	"testing"

	"pillbuddy-backend/internal/models"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"nil config", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writerIdentified != nil {
				t.Error("expected nil identified writer when disabled")
			}
			if p.writerFollowUp != nil {
				t.Error("expected nil follow-up writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:         false,
		Brokers:         []string{"localhost:9092"},
		TopicIdentified: "test.identified",
		TopicFollowUp:   "test.followup",
		Principal:       "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicIdentified != "test.identified" {
		t.Errorf("expected topic 'test.identified', got %s", p.topicIdentified)
	}
	if p.topicFollowUp != "test.followup" {
		t.Errorf("expected topic 'test.followup', got %s", p.topicFollowUp)
	}
}

func TestPublisher_PublishIdentified_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := models.IdentifiedEvent{
		EventType: "identified",
		SessionID: "sess-1",
		PillName:  "ASPIRIN",
	}
	if err := p.PublishIdentified(context.Background(), "sess-1", event); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishFollowUp_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := models.FollowUpEvent{
		EventType: "followup",
		SessionID: "sess-1",
		PillName:  "ASPIRIN",
		Question:  "Can I take this with food?",
	}
	if err := p.PublishFollowUp(context.Background(), "sess-1", event); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_Close_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})
	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}
