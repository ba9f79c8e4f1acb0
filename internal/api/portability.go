package api

import (
	"encoding/json"
	"net/http"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// ─── Data Portability & Profile Endpoints ───────────────────────────────────

// handleExport returns every persisted record in one read-only bundle.
// No write side effects.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bundle := domain.ExportBundle{
		Coin:         s.wallet.Balance(),
		Transactions: s.wallet.Transactions(0),
		FunZone:      s.funzone.Record(),
		Settings:     s.profile.Settings(),
		User:         s.profile.User(),
		ExportedAt:   s.now(),
		AppVersion:   Version,
	}
	writeJSON(w, http.StatusOK, bundle)
}

// handleClearAll removes every persisted record and resets the in-memory
// state to defaults. Irreversible.
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveAll(r.Context(), domain.AllKeys()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wallet.Reset()
	s.funzone.Reset()
	s.profile.Reset()

	s.logger.Info("all simulator data cleared")
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// handleGetSettings returns the settings record.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile.Settings())
}

// handlePutSettings replaces the settings record.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var rec domain.SettingsRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.profile.UpdateSettings(r.Context(), rec))
}

// handleGetUser returns the user record.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile.User())
}

// handlePutUser replaces the user record.
func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	var rec domain.UserRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.profile.UpdateUser(r.Context(), rec))
}
