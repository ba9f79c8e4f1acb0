package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ─── Wallet Endpoints ───────────────────────────────────────────────────────

type manualTransactionRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// handleBalance returns the current balance record.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallet.Balance())
}

// handleCredit applies a user-entered credit. A validation failure is a 400
// carrying the reason; the ledger stays untouched.
func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	var req manualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, outcome := s.wallet.ManualCredit(r.Context(), req.Amount, req.Description)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":       true,
		"new_balance": outcome.NewBalance,
		"entry":       outcome.Entry,
	})
}

// handleDebit applies a user-entered debit. Spending more than the balance is
// a validation failure at this boundary.
func (s *Server) handleDebit(w http.ResponseWriter, r *http.Request) {
	var req manualTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, outcome := s.wallet.ManualDebit(r.Context(), req.Amount, req.Description)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":       true,
		"new_balance": outcome.NewBalance,
		"entry":       outcome.Entry,
	})
}

// handleTransactions returns newest-first history, optionally limited.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries := s.wallet.Transactions(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"count":        len(entries),
	})
}

// handleRemoveTransaction deletes a single history entry by id.
func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.wallet.RemoveTransaction(r.Context(), id) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
