// Package metrics exposes Prometheus instruments for the pair-tasks core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairtasks_tasks_created_total",
		Help: "Tasks created and persisted.",
	})

	CompletionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairtasks_completion_toggles_total",
		Help: "Completion entries written, by resulting state.",
	}, []string{"state"})

	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairtasks_storage_errors_total",
		Help: "Document store failures by operation.",
	}, []string{"op"})

	StreakLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pairtasks_pair_streak_days",
		Help:    "Pair streak lengths returned by progress queries.",
		Buckets: []float64{0, 1, 3, 7, 14, 30, 60, 120, 366},
	})
)

// ToggleState is the label value for a completion write.
func ToggleState(done bool) string {
	if done {
		return "done"
	}
	return "undone"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
