// Package metrics exports session lifecycle counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/littlex/internal/logging"
)

const (
	namespace = "littlex"
	subsystem = "session"
)

// SessionMetrics counts session transitions. It satisfies session.Recorder.
type SessionMetrics struct {
	Logins          prometheus.Counter
	Terminations    *prometheus.CounterVec
	Warnings        prometheus.Counter
	StaleRejections prometheus.Counter
}

// NewSessionMetrics creates the collectors and registers them on reg.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Logins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "logins_total",
			Help: "Number of sessions established.",
		}),
		Terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "terminations_total",
			Help: "Number of sessions ended, by reason.",
		}, []string{"reason"}),
		Warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "warnings_total",
			Help: "Number of expiry warnings issued.",
		}),
		StaleRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "stale_rejections_total",
			Help: "Number of logins rejected because the credentials had already expired.",
		}),
	}
	reg.MustRegister(m.Logins, m.Terminations, m.Warnings, m.StaleRejections)
	return m
}

func (m *SessionMetrics) LoginSucceeded() { m.Logins.Inc() }

func (m *SessionMetrics) SessionEnded(reason string) {
	m.Terminations.WithLabelValues(reason).Inc()
}

func (m *SessionMetrics) WarningIssued() { m.Warnings.Inc() }

func (m *SessionMetrics) StaleRejected() { m.StaleRejections.Inc() }

// Serve exposes g on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
