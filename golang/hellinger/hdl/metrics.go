package hdl

import "github.com/prometheus/client_golang/prometheus"

const (
	leafReasonPure       = "pure"
	leafReasonCutoff     = "cutoff"
	leafReasonNoSplit    = "no_split"
	leafReasonDegenerate = "degenerate"
)

var treesGrownMetrics = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hellinger_trees_grown_total",
		Help: "Number of trees whose induction completed.",
	})

var treeNodesMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hellinger_tree_nodes_total",
		Help: "Number of tree nodes created, by kind.",
	}, []string{"kind"})

var leafTerminationsMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hellinger_leaf_terminations_total",
		Help: "Number of leaves created, by the rule that stopped the recursion.",
	}, []string{"reason"})

var splitDistanceMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "hellinger_split_distance",
		Help:    "Squared Hellinger distance of the accepted splits.",
		Buckets: prometheus.LinearBuckets(0, 0.2, 11),
	})

var treeInductionSecondsMetrics = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "hellinger_tree_induction_seconds",
		Help:    "Wall time spent growing one tree.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

func init() {
	prometheus.MustRegister(
		treesGrownMetrics,
		treeNodesMetrics,
		leafTerminationsMetrics,
		splitDistanceMetrics,
		treeInductionSecondsMetrics,
	)
}
