package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transform names used as metric labels.
const (
	OpOutline = "outline"
	OpSegment = "segment"
	OpExtract = "extract"
)

// Recorder feeds both the rolling per-operation latency windows served on
// /api/stats and the Prometheus collectors served on /metrics.
type Recorder struct {
	window time.Duration

	mu  sync.Mutex
	ops map[string]*Latency

	transformDuration *prometheus.HistogramVec
	chunksProduced    prometheus.Counter
	uploadFailures    *prometheus.CounterVec
}

// MustNewRecorder registers the collectors with reg. Registration errors
// panic, except that collectors already registered under the same names are
// reused so repeated construction against one registry is safe.
func MustNewRecorder(reg prometheus.Registerer, window time.Duration) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	transformDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quadboard",
			Subsystem: "transform",
			Name:      "duration_seconds",
			Help:      "Time spent running a text transform.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"op"},
	)
	chunksProduced := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quadboard",
			Subsystem: "transform",
			Name:      "chunks_produced_total",
			Help:      "Total number of chunks produced by segmentation.",
		},
	)
	uploadFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quadboard",
			Subsystem: "upload",
			Name:      "failures_total",
			Help:      "Uploads that could not be turned into text.",
		},
		[]string{"reason"},
	)

	transformDuration = mustRegister(reg, transformDuration).(*prometheus.HistogramVec)
	chunksProduced = mustRegister(reg, chunksProduced).(prometheus.Counter)
	uploadFailures = mustRegister(reg, uploadFailures).(*prometheus.CounterVec)

	return &Recorder{
		window:            window,
		ops:               make(map[string]*Latency),
		transformDuration: transformDuration,
		chunksProduced:    chunksProduced,
		uploadFailures:    uploadFailures,
	}
}

func mustRegister(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector
		}
		panic(err)
	}
	return c
}

// ObserveTransform records one run of op.
func (r *Recorder) ObserveTransform(op string, d time.Duration) {
	if r == nil {
		return
	}
	r.latency(op).Record(d)
	r.transformDuration.WithLabelValues(op).Observe(d.Seconds())
}

// AddChunks counts chunks emitted by a segmentation.
func (r *Recorder) AddChunks(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.chunksProduced.Add(float64(n))
}

// UploadFailed counts a rejected or unreadable upload.
func (r *Recorder) UploadFailed(reason string) {
	if r == nil {
		return
	}
	r.uploadFailures.WithLabelValues(reason).Inc()
}

// Snapshot returns the rolling latency aggregate for every operation seen.
func (r *Recorder) Snapshot() map[string]LatencySnapshot {
	out := make(map[string]LatencySnapshot)
	if r == nil {
		return out
	}
	r.mu.Lock()
	ops := make(map[string]*Latency, len(r.ops))
	for name, l := range r.ops {
		ops[name] = l
	}
	r.mu.Unlock()

	for name, l := range ops {
		out[name] = l.Snapshot()
	}
	return out
}

func (r *Recorder) latency(op string) *Latency {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ops[op]
	if !ok {
		l = NewLatency(r.window)
		r.ops[op] = l
	}
	return l
}
