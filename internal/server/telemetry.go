package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finrag_chat_requests_total",
		Help: "Chat turns by outcome (answered, refused, empty_question).",
	}, []string{"outcome"})

	retrievalSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finrag_retrieval_seconds",
		Help:    "Wall time of one ranking call.",
		Buckets: prometheus.DefBuckets,
	})

	factCheckVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finrag_fact_check_verdicts_total",
		Help: "Fact verification outcomes by verdict.",
	}, []string{"verdict"})
)
