// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const DefaultListenAddress = ":8080"

type Config struct {
	Logger        *slog.Logger
	PromRegistry  prometheus.Registerer
	ListenAddress string
	// Tracing wraps the handler with OpenTelemetry instrumentation
	Tracing bool
}

// Server is the hometto REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	store      Store
	classroom  Classroom
	ledger     Ledger
	metrics    apiMetrics
	httpServer *http.Server
	mu         sync.Mutex
}

// New creates a new API server instance. The ledger may be nil, in which case
// the ledger routes answer 503.
func New(
	cfg Config,
	store Store,
	classroom Classroom,
	ledger Ledger,
) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	s := &Server{
		config:    cfg,
		logger:    cfg.Logger.With("component", "api"),
		store:     store,
		classroom: classroom,
		ledger:    ledger,
	}
	s.metrics.init(cfg.PromRegistry)
	return s
}

// Handler returns the API routes wrapped in the request middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/v1/users", s.handleListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUser)
	mux.HandleFunc(
		"GET /api/v1/users/{id}/ledger-account",
		s.handleGetLedgerAccount,
	)
	mux.HandleFunc(
		"GET /api/v1/users/{id}/praises/received",
		s.handleListPraisesReceived,
	)
	mux.HandleFunc(
		"GET /api/v1/users/{id}/praises/sent",
		s.handleListPraisesSent,
	)
	mux.HandleFunc(
		"GET /api/v1/users/{id}/cooperations",
		s.handleListCooperations,
	)

	mux.HandleFunc("GET /api/v1/praises", s.handleListPraises)
	mux.HandleFunc("POST /api/v1/praises", s.handleSendPraise)
	mux.HandleFunc("GET /api/v1/praises/{id}", s.handleGetPraise)

	mux.HandleFunc("POST /api/v1/cooperations", s.handleCreateCooperation)
	mux.HandleFunc("GET /api/v1/cooperations/{id}", s.handleGetCooperation)
	mux.HandleFunc(
		"POST /api/v1/cooperations/{id}/approve",
		s.handleApproveCooperation,
	)

	mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	mux.HandleFunc("GET /api/v1/ledger/status", s.handleLedgerStatus)
	mux.HandleFunc(
		"GET /api/v1/ledger/accounts/{address}/balance",
		s.handleLedgerBalance,
	)
	mux.HandleFunc(
		"GET /api/v1/ledger/accounts/{address}/transactions",
		s.handleLedgerTransactions,
	)

	var handler http.Handler = s.instrument(mux)
	if s.config.Tracing {
		handler = otelhttp.NewHandler(handler, "hometto-api")
	}
	return handler
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr: s.config.ListenAddress,
		// Use h2c so we can serve HTTP/2 without TLS
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	ln, err := s.listen(server)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}
	s.logger.Info("API listener started on " + ln.Addr().String())

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// listen binds the socket first so port conflicts are reported by Start,
// then serves in a background goroutine
func (s *Server) listen(server *http.Server) (net.Listener, error) {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return ln, nil
}
