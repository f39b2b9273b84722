// Package server provides the HTTP server and routing for the options
// tracker.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/config"
	"github.com/greenmangroup/options-tracker/internal/di"
	"github.com/greenmangroup/options-tracker/internal/scheduler"
)

// Server is the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	backupJob      scheduler.Job
}

// New creates a new HTTP server
func New(cfg *config.Config, container *di.Container, log zerolog.Logger) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            log.With().Str("component", "server").Logger(),
		cfg:            cfg,
		container:      container,
		systemHandlers: NewSystemHandlers(container.DB, cfg.DataDir, log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetBackupJob registers the backup job for manual triggering
func (s *Server) SetBackupJob(job scheduler.Job) {
	s.backupJob = job
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	c := s.container
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", c.AccountsHandler.HandleList)
			r.Post("/", c.AccountsHandler.HandleCreate)
			r.Delete("/{id}", c.AccountsHandler.HandleDelete)
		})

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", c.TradingHandler.HandleList)
			r.Post("/", c.TradingHandler.HandleCreate)
			r.Get("/{id}", c.TradingHandler.HandleGet)
			r.Put("/{id}", c.TradingHandler.HandleUpdate)
			r.Delete("/{id}", c.TradingHandler.HandleDelete)
			r.Put("/{id}/status", c.TradingHandler.HandleUpdateStatus)
			r.Get("/{id}/history", c.TradingHandler.HandleHistory)
		})

		r.Route("/commissions", func(r chi.Router) {
			r.Get("/", c.CommissionsHandler.HandleList)
			r.Post("/", c.CommissionsHandler.HandleCreate)
			r.Put("/{id}", c.CommissionsHandler.HandleUpdate)
			r.Delete("/{id}", c.CommissionsHandler.HandleDelete)
		})

		r.Get("/cost-basis", c.CostBasisHandler.HandleSummaries)

		r.Route("/cash-flows", func(r chi.Router) {
			r.Get("/", c.CashFlowsHandler.HandleList)
			r.Post("/", c.CashFlowsHandler.HandleCreate)
			r.Delete("/{id}", c.CashFlowsHandler.HandleDelete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/bankroll", c.ReportsHandler.HandleBankroll)
			r.Get("/summary", c.ReportsHandler.HandleTradeStats)
			r.Get("/chart", c.ReportsHandler.HandleChart)
		})

		r.Route("/tickers", func(r chi.Router) {
			r.Get("/search", c.TickersHandler.HandleSearch)
			r.Get("/top", c.TickersHandler.HandleTopSymbols)
			r.Get("/{symbol}", c.TickersHandler.HandleCompanyInfo)
		})

		r.Post("/import", c.ImportsHandler.HandleImport)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Post("/backup", s.handleTriggerBackup)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if s.backupJob == nil {
		http.Error(w, "Backup job not registered", http.StatusServiceUnavailable)
		return
	}
	if err := s.backupJob.Run(); err != nil {
		s.log.Error().Err(err).Msg("Manual backup failed")
		http.Error(w, "Backup failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true}`))
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
