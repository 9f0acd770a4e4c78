package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_operations_total",
			Help: "Total poll and vote operations by outcome",
		},
		[]string{"operation", "status"},
	)

	pollsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polls_total",
			Help: "Current number of events",
		},
	)

	participantsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "participants_total",
			Help: "Current number of participants across all events",
		},
	)

	votesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "votes_total",
			Help: "Current number of vote rows",
		},
	)
)

// TrackOperation records one poll/vote operation outcome.
func TrackOperation(operation, status string) {
	pollOperations.WithLabelValues(operation, status).Inc()
}

// SetAggregateGauges refreshes the table-size gauges.
func SetAggregateGauges(polls, participants, votes int64) {
	pollsTotal.Set(float64(polls))
	participantsTotal.Set(float64(participants))
	votesTotal.Set(float64(votes))
}
