package handler

import (
	"net/http"
	"strings"

	"github.com/pavelanni/interviewprep/internal/evaluation"
	"github.com/pavelanni/interviewprep/internal/model"
)

type startInterviewRequest struct {
	Category   string           `json:"category" validate:"required,max=100"`
	Difficulty model.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Evaluate(r.Context(), req))
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req model.InsightRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.GenerateInsights(r.Context(), req))
}

func (h *Handler) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req startInterviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyMedium
	}

	user := model.UserFromContext(r.Context())
	id, err := h.store.CreateInterview(user.ID, strings.TrimSpace(req.Category), req.Difficulty)
	if err != nil {
		h.internalError(w, r, "failed to create interview", err)
		return
	}
	iv, err := h.store.GetInterview(id)
	if err != nil {
		h.internalError(w, r, "failed to load interview", err)
		return
	}
	writeJSON(w, http.StatusCreated, iv)
}

// ownedInterview loads the interview named by the URL and checks that the
// current user owns it. Admins may read any interview. Missing and foreign
// interviews both yield 404.
func (h *Handler) ownedInterview(w http.ResponseWriter, r *http.Request) (*model.InterviewView, bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return nil, false
	}
	view, err := h.store.GetInterviewView(id)
	if err != nil {
		h.internalError(w, r, "failed to load interview", err)
		return nil, false
	}
	user := model.UserFromContext(r.Context())
	if view == nil || (view.Interview.UserID != user.ID && user.Role != model.UserRoleAdmin) {
		fail(w, r, http.StatusNotFound, "InterviewNotFound")
		return nil, false
	}
	return view, true
}

func (h *Handler) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	view, ok := h.ownedInterview(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleAddResponse(w http.ResponseWriter, r *http.Request) {
	view, ok := h.ownedInterview(w, r)
	if !ok {
		return
	}
	if view.Interview.Status == model.InterviewCompleted {
		fail(w, r, http.StatusConflict, "InterviewCompleted")
		return
	}

	var req model.EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Category == "" {
		req.Category = view.Interview.Category
	}

	resp := model.InterviewResponse{
		InterviewID:    view.Interview.ID,
		Question:       req.Question,
		ExpectedAnswer: req.ExpectedAnswer,
		KeyPoints:      req.KeyPoints,
		Category:       req.Category,
		UserAnswer:     req.UserAnswer,
		Evaluation:     h.engine.Evaluate(r.Context(), req),
	}
	if err := h.store.AddResponse(&resp); err != nil {
		h.internalError(w, r, "failed to save response", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	view, ok := h.ownedInterview(w, r)
	if !ok {
		return
	}
	if view.Interview.Status == model.InterviewCompleted {
		fail(w, r, http.StatusConflict, "InterviewCompleted")
		return
	}
	if len(view.Responses) == 0 {
		fail(w, r, http.StatusBadRequest, "InterviewEmpty")
		return
	}

	results := make([]model.EvaluationResult, 0, len(view.Responses))
	questions := make([]model.QuestionResponse, 0, len(view.Responses))
	for _, resp := range view.Responses {
		results = append(results, resp.Evaluation)
		questions = append(questions, model.QuestionResponse{
			Question:   resp.Question,
			UserAnswer: resp.UserAnswer,
			Category:   resp.Category,
			Evaluation: resp.Evaluation,
		})
	}
	overall, scores := evaluation.Aggregate(results)

	insights := h.engine.GenerateInsights(r.Context(), model.InsightRequest{
		Category:       view.Interview.Category,
		Difficulty:     view.Interview.Difficulty,
		Responses:      questions,
		OverallScore:   overall,
		CategoryScores: scores,
	})

	if err := h.store.CompleteInterview(view.Interview.ID, overall, scores, insights); err != nil {
		h.internalError(w, r, "failed to complete interview", err)
		return
	}
	done, err := h.store.GetInterviewView(view.Interview.ID)
	if err != nil {
		h.internalError(w, r, "failed to load interview", err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}
