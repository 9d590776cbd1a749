package research

import (
	"iter"
	"time"

	"github.com/HerbHall/paperstream/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
)

// Transport labels for research metrics.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperstream_queries_total",
			Help: "Total number of research queries sent upstream.",
		},
		[]string{"transport"},
	)
	fragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperstream_fragments_total",
			Help: "Total number of generated text fragments relayed.",
		},
		[]string{"transport"},
	)
	upstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperstream_upstream_errors_total",
			Help: "Total number of failed upstream generations by error code.",
		},
		[]string{"transport", "code"},
	)
	streamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperstream_stream_duration_seconds",
			Help:    "Time from first pull to the end of an upstream generation.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"transport", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal)
	prometheus.MustRegister(fragmentsTotal)
	prometheus.MustRegister(upstreamErrorsTotal)
	prometheus.MustRegister(streamDuration)
}

// Observe wraps seq so that pulling it records query, fragment, error and
// duration metrics under transport. The wrapped sequence yields exactly what
// seq yields.
func Observe(transport string, seq iter.Seq2[llm.Fragment, error]) iter.Seq2[llm.Fragment, error] {
	return func(yield func(llm.Fragment, error) bool) {
		queriesTotal.WithLabelValues(transport).Inc()
		start := time.Now()
		outcome := "ok"
		defer func() {
			streamDuration.WithLabelValues(transport, outcome).Observe(time.Since(start).Seconds())
		}()

		for frag, err := range seq {
			if err != nil {
				outcome = "error"
				upstreamErrorsTotal.WithLabelValues(transport, llm.Code(err)).Inc()
				yield(frag, err)
				return
			}
			fragmentsTotal.WithLabelValues(transport).Inc()
			if !yield(frag, nil) {
				outcome = "abandoned"
				return
			}
		}
	}
}
