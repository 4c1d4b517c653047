package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgersim",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of requests handled by method and status code",
	}, []string{"method", "code"})

	errorCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgersim",
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgersim",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Number of requests that panicked",
	})

	latency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ledgersim",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time taken to handle a request",
		Buckets:   prometheus.DefBuckets,
	})
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// The status of a failed request is set further up the chain.
			code := "error"
			if err != nil {
				errorCount.Inc()
			}

			if v, verr := web.GetValues(ctx); verr == nil {
				if err == nil {
					code = strconv.Itoa(v.StatusCode)
				}
				requests.WithLabelValues(r.Method, code).Inc()
				latency.Observe(time.Since(v.Now).Seconds())
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
