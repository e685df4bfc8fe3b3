package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorship_matches_served_total",
		Help: "Mentor matches served, labelled by selection stage.",
	}, []string{"stage"})

	MatchesEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorship_matches_empty_total",
		Help: "Match requests that found no available mentor.",
	})

	ConnectionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorship_connection_outcomes_total",
		Help: "Connection operations, labelled by resulting status.",
	}, []string{"outcome"})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentorship_messages_sent_total",
		Help: "Chat messages accepted and persisted.",
	})
)
