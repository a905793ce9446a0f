// Package metrics holds the prometheus collectors for the advisor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Sessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_advisor_sessions_total",
			Help: "Total number of analysed recording sessions",
		},
		[]string{"outcome"},
	)

	Chunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_advisor_chunks_total",
			Help: "Total number of classified audio chunks",
		},
		[]string{"status"},
	)

	ClassifyLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emotion_advisor_classify_latency_seconds",
			Help:    "Latency of one chunk classification call",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	PrimaryEmotion = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_advisor_primary_emotion_total",
			Help: "Primary emotion of each detected session",
		},
		[]string{"emotion"},
	)

	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_advisor_sink_errors_total",
			Help: "Errors delivering an outcome to an optional sink",
		},
		[]string{"sink"},
	)

	DistressFlags = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotion_advisor_distress_flags_total",
			Help: "Emotion log entries flagged for distress keywords",
		},
	)
)
