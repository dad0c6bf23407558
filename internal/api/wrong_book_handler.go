package api

import (
	"net/http"

	"github.com/tghelper/quizbank/internal/grader"
	"github.com/tghelper/quizbank/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type SaveWrongBookRequest struct {
	Title    string `json:"title,omitempty" example:"第三章错题"`
	FileName string `json:"file_name,omitempty" example:"chapter3"`
	// Format is "envelope" (default) or "array".
	Format   string `json:"format,omitempty" example:"envelope"`
}

// GenerateWrongBookRequest selects session questions by 1-based position.
// User answers are keyed by the same positions.
type GenerateWrongBookRequest struct {
	WrongIndices []int               `json:"wrong_indices" example:"1,4,7"`
	UserAnswers  map[string][]string `json:"user_answers,omitempty"`
}

type SaveWrongQuestionsRequest struct {
	Title          string                 `json:"title,omitempty"`
	FileName       string                 `json:"file_name,omitempty"`
	WrongQuestions []grader.WrongQuestion `json:"wrong_questions"`
}

type SavedBookResponse struct {
	Success bool `json:"success" example:"true"`
	store.SavedBook
}

type ListWrongBooksResponse struct {
	Success bool             `json:"success" example:"true"`
	Books   []store.BookInfo `json:"files"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// saveWrongBook godoc
// @Summary      Save the wrong questions of a session
// @Description  Grades the session and writes its wrong set to the wrong-book directory.
// @Tags         WrongBooks
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                true  "Session ID"
// @Param        body       body      SaveWrongBookRequest  false "Title, file name and format"
// @Success      201        {object}  SavedBookResponse
// @Failure      400        {object}  ErrorResponse  "nothing to export"
// @Failure      403        {object}  ErrorResponse  "study mode"
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/wrong_books [post]
func (h *Handler) saveWrongBook(w http.ResponseWriter, r *http.Request) {
	var req SaveWrongBookRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	saved, err := h.exams.SaveWrongBook(r.PathValue("sessionID"), req.Title, req.FileName, req.Format)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, SavedBookResponse{Success: true, SavedBook: saved})
}

// generateWrongBook godoc
// @Summary      Save chosen session questions
// @Description  Writes the questions at the given 1-based positions. Positions outside the session are ignored.
// @Tags         WrongBooks
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                    true  "Session ID"
// @Param        body       body      GenerateWrongBookRequest  true  "Positions and answers"
// @Success      201        {object}  SavedBookResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/sessions/{sessionID}/wrong_books/generate [post]
func (h *Handler) generateWrongBook(w http.ResponseWriter, r *http.Request) {
	var req GenerateWrongBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	saved, err := h.exams.GenerateWrongBook(r.PathValue("sessionID"), req.WrongIndices, req.UserAnswers)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, SavedBookResponse{Success: true, SavedBook: saved})
}

// saveWrongQuestions godoc
// @Summary      Save a client-built wrong set
// @Tags         WrongBooks
// @Accept       json
// @Produce      json
// @Param        body  body      SaveWrongQuestionsRequest  true  "Wrong questions"
// @Success      201   {object}  SavedBookResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /api/wrong_books [post]
func (h *Handler) saveWrongQuestions(w http.ResponseWriter, r *http.Request) {
	var req SaveWrongQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	saved, err := h.exams.SaveWrongQuestions(req.Title, req.FileName, req.WrongQuestions)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, SavedBookResponse{Success: true, SavedBook: saved})
}

// listWrongBooks godoc
// @Summary      List saved wrong-question documents
// @Description  Newest first. Unreadable documents are skipped.
// @Tags         WrongBooks
// @Produce      json
// @Success      200  {object}  ListWrongBooksResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/wrong_books [get]
func (h *Handler) listWrongBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.exams.WrongBooks()
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, ListWrongBooksResponse{Success: true, Books: books})
}
