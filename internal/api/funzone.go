package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// ─── Fun-Zone Endpoints ─────────────────────────────────────────────────────
// An exhausted gate is a normal 200 with ok=false, not an error status —
// running out of spins is expected daily behavior.

// handleFunZoneStatus reports remaining allowances per activity.
func (s *Server) handleFunZoneStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funzone.Status(r.Context()))
}

// handleSpin spins the wheel.
func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	out, err := s.funzone.Spin(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSpinHistory returns the newest-first spin history.
func (s *Server) handleSpinHistory(w http.ResponseWriter, r *http.Request) {
	history := s.funzone.SpinHistory()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"spins": history,
		"count": len(history),
	})
}

// handleNewScratch creates (or returns the live) scratch card.
func (s *Server) handleNewScratch(w http.ResponseWriter, r *http.Request) {
	out, card, err := s.funzone.NewScratchCard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"ok":        out.OK,
		"remaining": out.Remaining,
	}
	if card != nil {
		// The value stays hidden until the reveal.
		resp["card"] = map[string]interface{}{
			"revealed":   card.Revealed,
			"created_at": card.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRevealScratch reveals the live card and grants its value.
func (s *Server) handleRevealScratch(w http.ResponseWriter, r *http.Request) {
	out, err := s.funzone.RevealScratch(r.Context())
	switch {
	case errors.Is(err, domain.ErrNoScratchCard):
		writeError(w, http.StatusNotFound, "no scratch card to reveal")
		return
	case errors.Is(err, domain.ErrAlreadyRevealed):
		writeError(w, http.StatusConflict, "scratch card already revealed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCheckIn claims the daily login reward.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	out, err := s.funzone.CheckIn(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWatchVideo grants a watch-video reward.
func (s *Server) handleWatchVideo(w http.ResponseWriter, r *http.Request) {
	out, err := s.funzone.WatchVideo(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleShare grants a share reward.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	out, err := s.funzone.Share(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Quiz Endpoints ─────────────────────────────────────────────────────────

type quizAnswerRequest struct {
	Choice int `json:"choice"`
}

// handleQuizStart begins a fresh session, replacing any in-progress one.
func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funzone.StartQuiz())
}

// handleQuizAnswer submits an answer for the current question.
func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, next, err := s.funzone.AnswerQuiz(r.Context(), req.Choice)
	switch {
	case errors.Is(err, domain.ErrNoQuizSession):
		writeError(w, http.StatusNotFound, "no quiz in progress")
		return
	case errors.Is(err, domain.ErrAnswerOutOfRange):
		writeError(w, http.StatusBadRequest, "answer choice out of range")
		return
	case errors.Is(err, domain.ErrQuizFinished):
		writeError(w, http.StatusConflict, "quiz already finished")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"correct": result.Correct,
		"score":   result.Score,
		"done":    result.Done,
	}
	if !result.Done {
		resp["next"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleQuizStats returns the persisted quiz stats record.
func (s *Server) handleQuizStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.funzone.QuizStats())
}
