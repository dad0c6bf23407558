package api

import (
	"fmt"
	"net/http"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/grader"
	"github.com/tghelper/quizbank/internal/service"
)

// ── Request / Response types ────────────────────────────────────────────────

// CreateSessionRequest accepts either explicit per-type counts or a total
// with per-type percentages. Type keys may be the stored label or the
// English name.
type CreateSessionRequest struct {
	TypeCounts map[string]int     `json:"type_counts,omitempty"`
	Total      int                `json:"total,omitempty" example:"50"`
	TypeRatios map[string]float64 `json:"type_ratios,omitempty"`
	StudyMode  bool               `json:"study_mode" example:"false"`
}

// config converts the request. Naming one type twice, once by label and
// once by English name, is rejected.
func (r *CreateSessionRequest) config() (practicesession.SessionConfig, error) {
	cfg := practicesession.DefaultConfig()
	for label, n := range r.TypeCounts {
		t := question.ParseType(label)
		if _, dup := cfg.Quotas[t]; dup {
			return cfg, fmt.Errorf("%w: type %s given twice in type_counts", service.ErrInvalidRequest, t.Name())
		}
		cfg.Quotas[t] = n
	}
	if len(r.TypeRatios) > 0 {
		cfg.Ratios = make(practicesession.Ratios, len(r.TypeRatios))
		for label, pct := range r.TypeRatios {
			t := question.ParseType(label)
			if _, dup := cfg.Ratios[t]; dup {
				return cfg, fmt.Errorf("%w: type %s given twice in type_ratios", service.ErrInvalidRequest, t.Name())
			}
			cfg.Ratios[t] = pct
		}
	}
	cfg.Total = r.Total
	cfg.StudyMode = r.StudyMode
	return cfg, nil
}

type CreateSessionResponse struct {
	Success bool `json:"success" example:"true"`
	service.SessionSummary
}

type SessionStatusResponse struct {
	Success bool `json:"success" example:"true"`
	service.SessionStatus
}

type QuestionResponse struct {
	Success bool `json:"success" example:"true"`
	service.QuestionView
}

type SubmitAnswerRequest struct {
	Answer []string `json:"answer"`
}

type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

type ViewAnswerResponse struct {
	Success bool `json:"success" example:"true"`
	service.AnswerView
}

type SubmitResponse struct {
	Success bool `json:"success" example:"true"`
	grader.Result
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createSession godoc
// @Summary      Start an exam session
// @Description  Samples the loaded bank by per-type counts, or by total and per-type percentages. Counts win when both are given.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        body  body      CreateSessionRequest  true  "Sampling parameters"
// @Success      201   {object}  CreateSessionResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /api/sessions [post]
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg, err := req.config()
	if h.handleServiceError(w, err) {
		return
	}
	summary, err := h.exams.CreateSession(cfg)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, CreateSessionResponse{Success: true, SessionSummary: summary})
}

// getSession godoc
// @Summary      Session progress
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionStatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.exams.Status(r.PathValue("sessionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, SessionStatusResponse{Success: true, SessionStatus: st})
}

// deleteSession godoc
// @Summary      Discard a session
// @Tags         Sessions
// @Param        sessionID  path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /api/sessions/{sessionID} [delete]
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if h.handleServiceError(w, h.exams.CloseSession(r.PathValue("sessionID"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getQuestion godoc
// @Summary      Fetch one question
// @Description  The correct answer and analysis are empty until the answer has been viewed, except in study mode.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Param        index      path      int     true  "0-based position"
// @Success      200        {object}  QuestionResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/questions/{index} [get]
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	view, err := h.exams.Question(r.PathValue("sessionID"), i)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, QuestionResponse{Success: true, QuestionView: view})
}

// submitAnswer godoc
// @Summary      Record an answer
// @Description  Replaces any previous answer for the position.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string               true  "Session ID"
// @Param        index      path      int                  true  "0-based position"
// @Param        body       body      SubmitAnswerRequest  true  "Answer entries"
// @Success      200        {object}  SuccessResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/questions/{index}/answer [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Answer == nil {
		req.Answer = []string{}
	}

	if h.handleServiceError(w, h.exams.SubmitAnswer(r.PathValue("sessionID"), i, req.Answer)) {
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// viewAnswer godoc
// @Summary      Reveal an answer
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Param        index      path      int     true  "0-based position"
// @Success      200        {object}  ViewAnswerResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/questions/{index}/view_answer [post]
func (h *Handler) viewAnswer(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	view, err := h.exams.ViewAnswer(r.PathValue("sessionID"), i)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, ViewAnswerResponse{Success: true, AnswerView: view})
}

// submitSession godoc
// @Summary      Grade a session
// @Description  Unanswered questions count as wrong. Disabled in study mode.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SubmitResponse
// @Failure      403        {object}  ErrorResponse  "study mode"
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/submit [post]
func (h *Handler) submitSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.exams.Submit(r.PathValue("sessionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponse{Success: true, Result: res})
}
