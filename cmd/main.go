package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"pillbuddy-backend/internal/app"
	"pillbuddy-backend/internal/config"
	"pillbuddy-backend/internal/events"
	httpapi "pillbuddy-backend/internal/http"
	"pillbuddy-backend/internal/observability"
	"pillbuddy-backend/internal/service/knowledge"
	"pillbuddy-backend/internal/service/narration"
	"pillbuddy-backend/internal/service/pipeline"
	"pillbuddy-backend/internal/service/session"
	"pillbuddy-backend/internal/service/tts"
	ttsgoogle "pillbuddy-backend/internal/service/tts/google"
	ttsmock "pillbuddy-backend/internal/service/tts/mock"
	"pillbuddy-backend/internal/service/vision"
	visionmock "pillbuddy-backend/internal/service/vision/mock"
	"pillbuddy-backend/internal/service/vision/yolohttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Application startup failed")
	}

	// Kafka publisher, log-only unless enabled
	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicIdentified: cfg.Kafka.TopicIdentified,
		TopicFollowUp:   cfg.Kafka.TopicFollowUp,
		Principal:       cfg.Service.Principal,
	})
	defer publisher.Close()

	identifier := vision.NewIdentifier(visionLoader(cfg))

	registry := knowledge.NewClient(knowledge.Config{
		URL:     cfg.Registry.URL,
		APIKey:  cfg.Registry.APIKey,
		Timeout: cfg.Registry.Timeout,
	})

	narrator, err := narration.New(narration.Config{
		OllamaURL: cfg.Narration.OllamaURL,
		Model:     cfg.Narration.Model,
		Timeout:   cfg.Narration.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create narration generator")
	}

	synth, err := newSynthesizer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create speech synthesizer")
	}
	defer synth.Close()
	speech := tts.NewDispatcher(synth, cfg.TTS.MaxConcurrent, cfg.TTS.Timeout)

	sessions, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer sessions.Close()

	p := pipeline.New(identifier, registry, narrator, speech, sessions, publisher)

	router := httpapi.NewRouter(httpapi.NewHandler(p, speech), cfg.Service.FrontendDir)
	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	obsServer := observability.NewServer(cfg.Observability.MetricsAddr)
	obsServer.Start()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown failed")
	}
	application.Shutdown()
}

// visionLoader returns the deferred provider loader for the configured
// vision backend. Loading runs on the first identification request so a
// slow or absent inference service never blocks startup.
func visionLoader(cfg *config.Config) vision.ProviderLoader {
	return func(_ context.Context) (vision.Detector, vision.Classifier, error) {
		switch cfg.Vision.Provider {
		case "mock":
			return visionmock.NewDetector(), visionmock.NewClassifier(), nil
		case "http":
			detector, classifier := yolohttp.New(yolohttp.Config{
				DetectorURL:   cfg.Vision.DetectorURL,
				ClassifierURL: cfg.Vision.ClassifierURL,
				MaxDetections: cfg.Vision.MaxDetections,
				Timeout:       cfg.Vision.Timeout,
			})
			return detector, classifier, nil
		default:
			return nil, nil, fmt.Errorf("unknown vision provider %q", cfg.Vision.Provider)
		}
	}
}

func newSynthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	switch cfg.TTS.Provider {
	case "mock":
		return ttsmock.New(), nil
	case "google":
		return ttsgoogle.New(context.Background(), ttsgoogle.Config{
			Voice:        cfg.TTS.Voice,
			LanguageCode: cfg.TTS.LanguageCode,
		})
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.TTS.Provider)
	}
}

func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "badger":
		return session.NewBadgerStore(cfg.Session.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
