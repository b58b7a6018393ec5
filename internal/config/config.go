// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the full service configuration.
type Config struct {
	Service       ServiceConfig
	Vision        VisionConfig
	Registry      RegistryConfig
	Narration     NarrationConfig
	TTS           TTSConfig
	Session       SessionConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds the HTTP transport settings.
type ServiceConfig struct {
	Principal   string `envconfig:"SERVICE_PRINCIPAL" default:"svc-pillbuddy"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	FrontendDir string `envconfig:"FRONTEND_DIR" default:""`
	Environment string `envconfig:"ENV" default:""`
}

// VisionConfig selects and configures the vision providers.
type VisionConfig struct {
	Provider      string        `envconfig:"VISION_PROVIDER" default:"mock"` // mock or http
	DetectorURL   string        `envconfig:"DETECTOR_URL" default:"http://localhost:5000/detect"`
	ClassifierURL string        `envconfig:"CLASSIFIER_URL" default:"http://localhost:5000/classify"`
	MaxDetections int           `envconfig:"VISION_MAX_DETECTIONS" default:"1"`
	Timeout       time.Duration `envconfig:"VISION_TIMEOUT" default:"10s"`
}

// RegistryConfig configures the authoritative drug registry client.
type RegistryConfig struct {
	URL     string        `envconfig:"REGISTRY_URL" default:"http://apis.data.go.kr/1471000/DrbEasyDrugInfoService/getDrbEasyDrugList"`
	APIKey  string        `envconfig:"REGISTRY_API_KEY" default:""`
	Timeout time.Duration `envconfig:"REGISTRY_TIMEOUT" default:"5s"`
}

// NarrationConfig configures the generative-text provider.
type NarrationConfig struct {
	OllamaURL string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	Model     string        `envconfig:"NARRATION_MODEL" default:"llama3.1"`
	Timeout   time.Duration `envconfig:"NARRATION_TIMEOUT" default:"30s"`
}

// TTSConfig configures the speech-synthesis provider.
type TTSConfig struct {
	Provider      string        `envconfig:"TTS_PROVIDER" default:"mock"` // mock or google
	Voice         string        `envconfig:"TTS_VOICE" default:"en-US-Neural2-C"`
	LanguageCode  string        `envconfig:"TTS_LANGUAGE_CODE" default:"en-US"`
	Timeout       time.Duration `envconfig:"TTS_TIMEOUT" default:"15s"`
	MaxConcurrent int           `envconfig:"TTS_MAX_CONCURRENT" default:"4"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	Backend    string `envconfig:"SESSION_BACKEND" default:"memory"` // memory or badger
	BadgerPath string `envconfig:"SESSION_BADGER_PATH" default:"/tmp/pillbuddy-sessions"`
}

// KafkaConfig configures the identification-event publisher.
type KafkaConfig struct {
	Enabled         bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers         []string `envconfig:"KAFKA_BROKERS" default:""`
	TopicIdentified string   `envconfig:"KAFKA_TOPIC_IDENTIFIED" default:"pills.identified"`
	TopicFollowUp   string   `envconfig:"KAFKA_TOPIC_FOLLOWUP" default:"pills.followup"`
}

// ObservabilityConfig configures logging and the metrics server.
type ObservabilityConfig struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
