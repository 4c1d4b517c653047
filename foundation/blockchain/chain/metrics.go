package chain

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusChainBlocksAccepted prometheus.Counter
	prometheusChainBlocksRejected *prometheus.CounterVec
	prometheusChainTipHeight      prometheus.Gauge
	prometheusChainIndexSize      prometheus.Gauge

	prometheusMetricsInitOnce sync.Once
)

func initMetrics() {
	prometheusMetricsInitOnce.Do(_initMetrics)
}

func _initMetrics() {
	prometheusChainBlocksAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "chain",
			Name:      "blocks_accepted",
			Help:      "Number of blocks added to the chain index",
		},
	)
	prometheusChainBlocksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledgersim",
			Subsystem: "chain",
			Name:      "blocks_rejected",
			Help:      "Number of blocks rejected by the chain index",
		},
		[]string{
			"reason", // why the block was rejected
		},
	)
	prometheusChainTipHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgersim",
			Subsystem: "chain",
			Name:      "tip_height",
			Help:      "Height of the block at the tip of the longest chain",
		},
	)
	prometheusChainIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ledgersim",
			Subsystem: "chain",
			Name:      "index_size",
			Help:      "Number of blocks held by the chain index",
		},
	)
}

func accepted() {
	prometheusChainBlocksAccepted.Inc()
}

func rejected(err error) {
	reason := "unknown"
	switch {
	case errors.Is(err, ErrGenesisBlock):
		reason = "genesis"
	case errors.Is(err, ErrUnknownParent):
		reason = "unknown_parent"
	case errors.Is(err, ErrTooOld):
		reason = "too_old"
	case errors.Is(err, ErrInvalidTransactions):
		reason = "invalid_transactions"
	case errors.Is(err, ErrDuplicateBlock):
		reason = "duplicate"
	}

	prometheusChainBlocksRejected.WithLabelValues(reason).Inc()
}

func observeTip(c *Chain) {
	prometheusChainTipHeight.Set(float64(c.tip.height))
	prometheusChainIndexSize.Set(float64(len(c.nodes)))
}
