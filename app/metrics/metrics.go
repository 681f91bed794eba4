package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SubmissionsAdmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "arena_submissions_admitted_total", Help: "Total submissions admitted by intake"},
	)
	SubmissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "arena_submissions_rejected_total", Help: "Total submissions rejected by intake"},
		[]string{"reason"},
	)
	ScoringRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "arena_scoring_retries_total", Help: "Total scoring calls retried after a failure"},
	)
	ScoringFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "arena_scoring_failures_total", Help: "Total submissions whose scoring retry budget was exhausted"},
	)
	SnapshotsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "arena_leaderboard_snapshots_published_total", Help: "Total leaderboard snapshots published to subscribers"},
	)
	SnapshotsCoalesced = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "arena_leaderboard_snapshots_coalesced_total", Help: "Total intermediate snapshots dropped for slow subscribers"},
	)
)

func Register() {
	prometheus.MustRegister(
		SubmissionsAdmitted,
		SubmissionsRejected,
		ScoringRetries,
		ScoringFailures,
		SnapshotsPublished,
		SnapshotsCoalesced,
	)
}
