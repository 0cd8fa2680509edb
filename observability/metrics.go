package observability

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the ladder core.
type Metrics struct {
	ChallengeTransitions *prometheus.CounterVec
	EligibilityDenials   *prometheus.CounterVec
	SettlementOutcomes   *prometheus.CounterVec
	SettlementDuration   prometheus.Histogram
	ScoreUpdates         prometheus.Counter
	NotificationFailures prometheus.Counter
}

// NewMetrics registers the ladder instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChallengeTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_challenge_transitions_total",
			Help: "Challenge lifecycle transitions by target status.",
		}, []string{"to_status"}),
		EligibilityDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_eligibility_denials_total",
			Help: "Challenge creations denied by the eligibility rules.",
		}, []string{"reason"}),
		SettlementOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_settlement_outcomes_total",
			Help: "Rank settlement results (swapped, no_change, failed).",
		}, []string{"outcome"}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_settlement_duration_seconds",
			Help:    "Duration of the atomic rank settlement transaction.",
			Buckets: prometheus.DefBuckets,
		}),
		ScoreUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "ladder_score_updates_total",
			Help: "Live scoreboard updates published.",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ladder_notification_failures_total",
			Help: "Best-effort notification deliveries that failed and were dropped.",
		}),
	}
}

// ServeMetrics exposes the registry on addr until the server fails. Callers
// run it in a goroutine; an empty addr disables the endpoint.
func ServeMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}
