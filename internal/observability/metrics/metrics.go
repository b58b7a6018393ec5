// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pillbuddy"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Identify flow
	IdentifyRequests  prometheus.Counter
	IdentifySuccess   prometheus.Counter
	IdentifyRejected  *prometheus.CounterVec // reason: empty_image, no_pill
	IdentifyDuration  prometheus.Histogram
	RecognitionMisses prometheus.Counter

	// Follow-up flow
	FollowUpRequests  prometheus.Counter
	FollowUpSuccess   prometheus.Counter
	FollowUpNoSession prometheus.Counter

	// Vision pipeline
	VisionInitTotal  prometheus.Counter
	VisionInitErrors prometheus.Counter
	VisionLatency    prometheus.Histogram
	CropsClassified  prometheus.Counter
	CropsSkipped     prometheus.Counter

	// Knowledge lookups
	KnowledgeLookups *prometheus.CounterVec // outcome: hit, miss, error
	RegistryLatency  prometheus.Histogram

	// Narration
	NarrationCalls    *prometheus.CounterVec // mode: summary, fallback, answer
	NarrationFailures prometheus.Counter
	NarrationLatency  prometheus.Histogram
	ClosingAppended   prometheus.Counter

	// Speech synthesis
	SynthesisCalls    prometheus.Counter
	SynthesisFailures prometheus.Counter
	SynthesisLatency  prometheus.Histogram

	// Kafka publish
	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		IdentifyRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identify_requests_total",
			Help:      "Total number of identification requests",
		}),
		IdentifySuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identify_success_total",
			Help:      "Total number of successful identifications",
		}),
		IdentifyRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identify_rejected_total",
			Help:      "Total number of rejected identification requests by reason",
		}, []string{"reason"}),
		IdentifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "identify_duration_seconds",
			Help:      "End-to-end duration of identification requests",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		RecognitionMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_misses_total",
			Help:      "Total number of images in which no pill was recognized",
		}),

		FollowUpRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followup_requests_total",
			Help:      "Total number of follow-up question requests",
		}),
		FollowUpSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followup_success_total",
			Help:      "Total number of answered follow-up questions",
		}),
		FollowUpNoSession: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followup_no_session_total",
			Help:      "Total number of follow-ups rejected for missing session context",
		}),

		VisionInitTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_init_total",
			Help:      "Number of vision provider initializations (expected: 1)",
		}),
		VisionInitErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_init_errors_total",
			Help:      "Number of failed vision provider initializations",
		}),
		VisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vision_latency_seconds",
			Help:      "Latency of the full detect-crop-classify pipeline",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		CropsClassified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crops_classified_total",
			Help:      "Number of detected crops successfully classified",
		}),
		CropsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crops_skipped_total",
			Help:      "Number of detected crops skipped due to classification failure",
		}),

		KnowledgeLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_lookups_total",
			Help:      "Registry lookups by outcome (hit, miss, error)",
		}, []string{"outcome"}),
		RegistryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registry_latency_seconds",
			Help:      "Latency of authoritative registry lookups",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		NarrationCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narration_calls_total",
			Help:      "Narration generations by mode (summary, fallback, answer)",
		}, []string{"mode"}),
		NarrationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narration_failures_total",
			Help:      "Narration generations that degraded to the apology script",
		}),
		NarrationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "narration_latency_seconds",
			Help:      "Latency of generative narration calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		ClosingAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closing_sentence_appended_total",
			Help:      "Scripts where the mandated closing sentence had to be appended",
		}),

		SynthesisCalls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_calls_total",
			Help:      "Total number of speech synthesis calls",
		}),
		SynthesisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_failures_total",
			Help:      "Speech synthesis calls that returned no audio",
		}),
		SynthesisLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_seconds",
			Help:      "Latency of speech synthesis calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}),

		PublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka publish attempts",
		}, []string{"topic", "eventType"}),
		PublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of failed Kafka publishes",
		}, []string{"topic", "eventType"}),
		PublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Latency of Kafka publishes",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"topic"}),
	}
}

// RecordPublish records the outcome of one Kafka publish attempt.
func (m *Metrics) RecordPublish(topic, eventType string, err error, seconds float64) {
	m.PublishTotal.WithLabelValues(topic, eventType).Inc()
	if err != nil {
		m.PublishErrors.WithLabelValues(topic, eventType).Inc()
	}
	m.PublishLatency.WithLabelValues(topic).Observe(seconds)
}
