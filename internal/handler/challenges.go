package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/interviewprep/internal/challenge"
	appI18n "github.com/pavelanni/interviewprep/internal/i18n"
	"github.com/pavelanni/interviewprep/internal/model"
)

// challengeError maps challenge service errors to responses.
func (h *Handler) challengeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, challenge.ErrNotFound):
		fail(w, r, http.StatusNotFound, "ChallengeNotFound")
	case errors.Is(err, challenge.ErrAttemptLimit):
		writeError(w, http.StatusBadRequest, appI18n.Td(r.Context(), "AttemptLimit", map[string]any{
			"Max": h.challenges.Config().MaxDailyAttempts,
		}))
	case errors.Is(err, challenge.ErrAlreadyCompleted):
		fail(w, r, http.StatusConflict, "AlreadyCompleted")
	default:
		h.internalError(w, r, "challenge operation failed", err)
	}
}

// publicChallenge hides the expected answer from candidates.
func publicChallenge(c *model.Challenge) *model.Challenge {
	out := *c
	out.ExpectedAnswer = ""
	return &out
}

func (h *Handler) handleTodayChallenge(w http.ResponseWriter, r *http.Request) {
	ch, err := h.challenges.Today(r.Context())
	if errors.Is(err, challenge.ErrNotFound) {
		fail(w, r, http.StatusNotFound, "NoChallengeToday")
		return
	}
	if err != nil {
		h.challengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicChallenge(ch))
}

func (h *Handler) handleSubmitChallenge(w http.ResponseWriter, r *http.Request) {
	var req model.SubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	user := model.UserFromContext(r.Context())
	res, err := h.challenges.Submit(r.Context(), user.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.challengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleAttempts(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	attempts, err := h.challenges.Attempts(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.challengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) handleStreak(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	st, err := h.challenges.Streak(r.Context(), user.ID)
	if err != nil {
		h.challengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	board, err := h.challenges.Leaderboard(r.Context(), limit)
	if err != nil {
		h.challengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
