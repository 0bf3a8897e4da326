package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	txnCommits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tagme_store_txn_commits_total",
		Help: "Transactions committed successfully.",
	})
	txnRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tagme_store_txn_retries_total",
		Help: "Transaction attempts rerun after losing a commit race.",
	})
	txnConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tagme_store_txn_conflicts_total",
		Help: "Transactions surfaced as conflicts after exhausting retries.",
	})
)

func init() {
	prometheus.MustRegister(txnCommits, txnRetries, txnConflicts)
}
