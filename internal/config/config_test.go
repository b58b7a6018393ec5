package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "FRONTEND_DIR", "ENV", "LOG_LEVEL",
		"VISION_PROVIDER", "DETECTOR_URL", "CLASSIFIER_URL", "VISION_MAX_DETECTIONS", "VISION_TIMEOUT",
		"REGISTRY_URL", "REGISTRY_API_KEY", "REGISTRY_TIMEOUT",
		"OLLAMA_URL", "NARRATION_MODEL", "NARRATION_TIMEOUT",
		"TTS_PROVIDER", "TTS_VOICE", "TTS_LANGUAGE_CODE", "TTS_TIMEOUT", "TTS_MAX_CONCURRENT",
		"SESSION_BACKEND", "SESSION_BADGER_PATH",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_IDENTIFIED", "KAFKA_TOPIC_FOLLOWUP",
		"METRICS_ADDR",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Service.Principal != "svc-pillbuddy" {
		t.Errorf("expected default principal 'svc-pillbuddy', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}

	if cfg.Vision.Provider != "mock" {
		t.Errorf("expected default vision provider 'mock', got %s", cfg.Vision.Provider)
	}
	if cfg.Vision.MaxDetections != 1 {
		t.Errorf("expected default max detections 1, got %d", cfg.Vision.MaxDetections)
	}
	if cfg.Vision.Timeout != 10*time.Second {
		t.Errorf("expected default vision timeout 10s, got %v", cfg.Vision.Timeout)
	}

	if cfg.Registry.Timeout != 5*time.Second {
		t.Errorf("expected default registry timeout 5s, got %v", cfg.Registry.Timeout)
	}

	if cfg.TTS.Provider != "mock" {
		t.Errorf("expected default TTS provider 'mock', got %s", cfg.TTS.Provider)
	}
	if cfg.TTS.Voice != "en-US-Neural2-C" {
		t.Errorf("expected default voice 'en-US-Neural2-C', got %s", cfg.TTS.Voice)
	}
	if cfg.TTS.MaxConcurrent != 4 {
		t.Errorf("expected default TTS max concurrent 4, got %d", cfg.TTS.MaxConcurrent)
	}

	if cfg.Session.Backend != "memory" {
		t.Errorf("expected default session backend 'memory', got %s", cfg.Session.Backend)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicIdentified != "pills.identified" {
		t.Errorf("expected default identified topic 'pills.identified', got %s", cfg.Kafka.TopicIdentified)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)

	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("VISION_PROVIDER", "http")
	os.Setenv("DETECTOR_URL", "http://models:5000/detect")
	os.Setenv("VISION_MAX_DETECTIONS", "3")
	os.Setenv("REGISTRY_TIMEOUT", "2s")
	os.Setenv("TTS_PROVIDER", "google")
	os.Setenv("TTS_VOICE", "en-GB-Neural2-A")
	os.Setenv("TTS_MAX_CONCURRENT", "8")
	os.Setenv("SESSION_BACKEND", "badger")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Vision.Provider != "http" {
		t.Errorf("expected vision provider 'http', got %s", cfg.Vision.Provider)
	}
	if cfg.Vision.DetectorURL != "http://models:5000/detect" {
		t.Errorf("unexpected detector URL %s", cfg.Vision.DetectorURL)
	}
	if cfg.Vision.MaxDetections != 3 {
		t.Errorf("expected max detections 3, got %d", cfg.Vision.MaxDetections)
	}
	if cfg.Registry.Timeout != 2*time.Second {
		t.Errorf("expected registry timeout 2s, got %v", cfg.Registry.Timeout)
	}
	if cfg.TTS.Provider != "google" {
		t.Errorf("expected TTS provider 'google', got %s", cfg.TTS.Provider)
	}
	if cfg.TTS.Voice != "en-GB-Neural2-A" {
		t.Errorf("expected voice 'en-GB-Neural2-A', got %s", cfg.TTS.Voice)
	}
	if cfg.TTS.MaxConcurrent != 8 {
		t.Errorf("expected TTS max concurrent 8, got %d", cfg.TTS.MaxConcurrent)
	}
	if cfg.Session.Backend != "badger" {
		t.Errorf("expected session backend 'badger', got %s", cfg.Session.Backend)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)

	os.Setenv("VISION_MAX_DETECTIONS", "not-a-number")
	defer clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid numeric value")
	}
}
