// Package metrics holds the Prometheus collectors of the leaderboard pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaderboard"

// Registry is the registry every collector of this package is registered on
var Registry = prometheus.NewRegistry()

var (
	GitHubRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "github",
		Name:      "requests_total",
		Help:      "GitHub API requests by endpoint class and HTTP status.",
	}, []string{"endpoint", "status"})

	GitHubThrottleSeconds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "github",
		Name:      "throttle_seconds_total",
		Help:      "Time spent pausing between GitHub API requests.",
	}, []string{"endpoint"})

	GitHubRateRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "github",
		Name:      "rate_limit_remaining",
		Help:      "Last seen X-RateLimit-Remaining value.",
	})

	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Leaderboard runs by result.",
	}, []string{"result"})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of completed leaderboard runs.",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	ActivitiesIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_ingested_total",
		Help:      "Attributed activities produced by ingestion, before deduplication.",
	}, []string{"type"})

	Contributors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "contributors",
		Help:      "Contributors on the last written leaderboard.",
	}, []string{"period"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		GitHubRequests,
		GitHubThrottleSeconds,
		GitHubRateRemaining,
		Runs,
		RunDuration,
		ActivitiesIngested,
		Contributors,
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
