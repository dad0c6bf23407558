package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/service"
	"github.com/tghelper/quizbank/internal/store"
)

// Handler holds the dependencies shared by every HTTP handler.
type Handler struct {
	exams  *service.ExamService
	logger *slog.Logger
}

func NewHandler(exams *service.ExamService, logger *slog.Logger) *Handler {
	return &Handler{
		exams:  exams,
		logger: logger,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"session not found"`
}

// respondJSON writes v with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// decodeJSON reads the request body into v. It writes a 400 and returns
// false when the body is not valid JSON for v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// pathIndex parses the {index} path segment.
func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return i, true
}

// handleServiceError maps service and store errors to a status code and
// writes the response. It returns true if err was non-nil.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	var (
		loadErr *store.LoadError
		pathErr *store.PathSecurityError
	)
	switch {
	case errors.As(err, &loadErr):
		switch loadErr.Reason {
		case store.NotFound:
			respondError(w, http.StatusNotFound, err.Error())
		case store.PermissionDenied:
			respondError(w, http.StatusForbidden, err.Error())
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
	case errors.As(err, &pathErr):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, practicesession.ErrIndexOutOfRange):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSubmissionDisabled):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNoBankLoaded),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, store.ErrNothingToExport):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
