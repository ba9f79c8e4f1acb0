// Package api exposes the local REST surface of the simulator daemon.
// Every endpoint serves the single local user; there is no auth layer.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/app/funzone"
	"github.com/rbxsim/rbxsim/internal/app/ledger"
	"github.com/rbxsim/rbxsim/internal/app/profile"
	"github.com/rbxsim/rbxsim/internal/domain"
)

// Version is reported by /api/version and stamped into export bundles.
const Version = "0.1.0"

// Server is the simulator HTTP API server.
type Server struct {
	wallet         *ledger.Coordinator
	funzone        *funzone.Service
	profile        *profile.Service
	store          domain.StoragePort
	logger         *zap.Logger
	now            func() time.Time
	metricsEnabled bool
}

// NewServer wires the API over the application services.
func NewServer(wallet *ledger.Coordinator, fz *funzone.Service, prof *profile.Service, store domain.StoragePort, logger *zap.Logger, now func() time.Time) *Server {
	return &Server{
		wallet:  wallet,
		funzone: fz,
		profile: prof,
		store:   store,
		logger:  logger,
		now:     now,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "rbxsim is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Route("/api/wallet", func(r chi.Router) {
		r.Get("/", s.handleBalance)
		r.Post("/credit", s.handleCredit)
		r.Post("/debit", s.handleDebit)
		r.Get("/transactions", s.handleTransactions)
		r.Delete("/transactions/{id}", s.handleRemoveTransaction)
	})

	r.Route("/api/funzone", func(r chi.Router) {
		r.Get("/status", s.handleFunZoneStatus)
		r.Post("/spin", s.handleSpin)
		r.Get("/spins", s.handleSpinHistory)
		r.Post("/scratch", s.handleNewScratch)
		r.Post("/scratch/reveal", s.handleRevealScratch)
		r.Post("/checkin", s.handleCheckIn)
		r.Post("/video", s.handleWatchVideo)
		r.Post("/share", s.handleShare)
		r.Post("/quiz/start", s.handleQuizStart)
		r.Post("/quiz/answer", s.handleQuizAnswer)
		r.Get("/quiz/stats", s.handleQuizStats)
	})

	r.Get("/api/export", s.handleExport)
	r.Delete("/api/data", s.handleClearAll)

	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)
	r.Get("/api/user", s.handleGetUser)
	r.Put("/api/user", s.handlePutUser)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
