// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the service is ready to accept connections.
type ReadinessChecker func() bool

// authOutcomes is a package-level counter for terminal auth results.
// This allows session handlers to increment the metric without needing
// access to the Server instance.
var authOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "limbogate_auth_outcomes_total",
		Help: "Total number of finished auth flows by outcome",
	},
	[]string{"outcome"},
)

// premiumLookups is a package-level counter for external premium
// resolution results.
var premiumLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "limbogate_premium_lookups_total",
		Help: "Total number of external premium lookups by result",
	},
	[]string{"result"},
)

// RecordAuthOutcome increments the auth outcome counter. outcome is one
// of "registered", "logged_in", "bypassed" or "disconnected".
func RecordAuthOutcome(outcome string) {
	authOutcomes.WithLabelValues(outcome).Inc()
}

// RecordPremiumLookup increments the premium lookup counter. result is
// one of "premium", "cracked" or "fallback".
func RecordPremiumLookup(result string) {
	premiumLookups.WithLabelValues(result).Inc()
}

// Metrics contains custom Prometheus metrics for LimboGate.
type Metrics struct {
	SessionCacheEntries prometheus.Gauge
	PremiumCacheEntries prometheus.Gauge
	RegisteredPlayers   prometheus.Gauge
}

// NewMetrics creates and registers custom LimboGate metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "limbogate_session_cache_entries",
			Help: "Current number of entries in the recent-session cache",
		}),
		PremiumCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "limbogate_premium_cache_entries",
			Help: "Current number of entries in the premium lookup cache",
		}),
		RegisteredPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "limbogate_registered_players",
			Help: "Total number of registered player records",
		}),
	}

	reg.MustRegister(m.SessionCacheEntries)
	reg.MustRegister(m.PremiumCacheEntries)
	reg.MustRegister(m.RegisteredPlayers)
	reg.MustRegister(authOutcomes)
	reg.MustRegister(premiumLookups)

	return m
}

// Server provides HTTP endpoints for observability (metrics and health probes).
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates a new observability server.
// addr: listen address in "host:port" format (e.g., "127.0.0.1:9100", ":9100" for all interfaces).
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	// Create a new registry to avoid polluting the global one
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Register custom metrics
	metrics := NewMetrics(registry)

	s := &Server{
		addr:     addr,
		registry: registry,
		metrics:  metrics,
		isReady:  readinessChecker,
	}

	return s
}

// Metrics returns the custom metrics for recording application events.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving observability endpoints.
// It returns an error channel that will receive any errors from the HTTP server
// after it starts. The channel is closed when the server stops gracefully.
// Callers should monitor this channel to detect server failures.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	// Kubernetes-style health probes
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	// Create buffered error channel so the goroutine doesn't block
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		// Use local httpSrv to avoid race with subsequent Start() calls
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the observability server.
func (s *Server) Stop(ctx context.Context) error {
	// Use CompareAndSwap to atomically transition from running to stopped.
	// This prevents a race where a concurrent Start() could succeed between
	// checking the running state and setting it to false.
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			// Restore running state on failure so the server can be stopped again
			s.running.Store(true)
			return oops.With("operation", "shutdown_observability_server").Wrap(err)
		}
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleLiveness returns 200 if the process is running.
// This is a simple check that the process is alive.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("ok\n"))
}

// handleReadiness returns 200 if the service is ready to accept connections,
// or 503 if not ready.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable, client may disconnect
		w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte("not ready\n"))
}
