package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	QuizzesCompleted *prometheus.CounterVec
	XPAwarded        prometheus.Counter
	LevelUps         prometheus.Counter
	StorageErrors    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		QuizzesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learning",
				Name:      "quizzes_completed_total",
				Help:      "Completed quiz attempts",
			},
			[]string{"quiz"},
		),
		XPAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "learning",
			Name:      "xp_awarded_total",
			Help:      "Experience points awarded",
		}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "learning",
			Name:      "level_ups_total",
			Help:      "Level-ups across all users",
		}),
		StorageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learning",
				Name:      "storage_errors_total",
				Help:      "Failed storage operations",
			},
			[]string{"op"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "learning",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "path", "status"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.QuizzesCompleted, m.XPAwarded, m.LevelUps, m.StorageErrors, m.RequestDuration)
	return m
}

// QuizCompleted records a graded attempt.
func (m *Metrics) QuizCompleted(quizID string, xp, levels int) {
	if m == nil {
		return
	}
	m.QuizzesCompleted.WithLabelValues(quizID).Inc()
	m.ObserveXP(xp, levels)
}

// ObserveXP records an XP award and the level-ups it caused.
func (m *Metrics) ObserveXP(xp, levels int) {
	if m == nil {
		return
	}
	m.XPAwarded.Add(float64(xp))
	m.LevelUps.Add(float64(levels))
}

// StorageFailed counts a failed storage operation.
func (m *Metrics) StorageFailed(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware times requests. path should be the route pattern, not the raw URL.
func (m *Metrics) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if m == nil {
			return
		}
		m.RequestDuration.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes websocket upgrades through to the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
