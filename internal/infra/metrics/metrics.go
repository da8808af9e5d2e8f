// Package metrics exposes Prometheus counters for the query lifecycle.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// AnalysisRequests counts draft analyses by outcome: ok, cached, disabled, failed.
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduquery_analysis_requests_total",
			Help: "Draft analysis requests by outcome.",
		},
		[]string{"outcome"},
	)

	// QueriesCreated counts finalized queries by whether analysis shaped them.
	QueriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduquery_queries_created_total",
			Help: "Queries finalized through the creation workflow.",
		},
		[]string{"analysis"},
	)

	// SimulatedResponses counts fired response timers by branch: responded, silent, missing.
	SimulatedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduquery_simulated_responses_total",
			Help: "Fired response simulator timers by branch.",
		},
		[]string{"branch"},
	)
)

// Server serves /metrics until ctx is cancelled.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, logger *logrus.Entry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start runs the listener in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("Metrics endpoint listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics endpoint stopped")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Warn("Metrics endpoint shutdown failed")
	}
}
