package api

import "net/http"

// ── Request / Response types ────────────────────────────────────────────────

type ListBanksResponse struct {
	Success bool     `json:"success" example:"true"`
	Files   []string `json:"files" example:"questions.json,cafuc_questions.json"`
}

// LoadBankRequest names the bank to load. An empty file_path loads the
// default bank.
type LoadBankRequest struct {
	FilePath string `json:"file_path,omitempty" example:"questions.json"`
}

type BankStatsResponse struct {
	Success        bool           `json:"success" example:"true"`
	File           string         `json:"file" example:"questions.json"`
	TotalQuestions int            `json:"total_questions" example:"120"`
	Stats          map[string]int `json:"stats"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// listBanks godoc
// @Summary      List question bank files
// @Description  Returns the JSON documents found in the bank directory.
// @Tags         Banks
// @Produce      json
// @Success      200  {object}  ListBanksResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/banks [get]
func (h *Handler) listBanks(w http.ResponseWriter, r *http.Request) {
	files, err := h.exams.AvailableBanks()
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, ListBanksResponse{Success: true, Files: files})
}

// loadBank godoc
// @Summary      Load a question bank
// @Description  Replaces the current bank. Without file_path the default bank is loaded. On failure the previous bank stays loaded.
// @Tags         Banks
// @Accept       json
// @Produce      json
// @Param        body  body      LoadBankRequest  false "Bank file, relative to the bank directory"
// @Success      200   {object}  BankStatsResponse
// @Failure      400   {object}  ErrorResponse  "invalid document"
// @Failure      403   {object}  ErrorResponse  "path outside the bank directory"
// @Failure      404   {object}  ErrorResponse
// @Router       /api/banks/load [post]
func (h *Handler) loadBank(w http.ResponseWriter, r *http.Request) {
	var req LoadBankRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	info, err := h.exams.LoadBank(req.FilePath)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, BankStatsResponse{
		Success:        true,
		File:           info.File,
		TotalQuestions: info.TotalQuestions,
		Stats:          info.Stats,
	})
}

// bankStats godoc
// @Summary      Current bank statistics
// @Description  Question count per type of the loaded bank.
// @Tags         Banks
// @Produce      json
// @Success      200  {object}  BankStatsResponse
// @Failure      400  {object}  ErrorResponse  "no bank loaded"
// @Router       /api/banks/stats [get]
func (h *Handler) bankStats(w http.ResponseWriter, r *http.Request) {
	info, err := h.exams.BankStats()
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, BankStatsResponse{
		Success:        true,
		File:           info.File,
		TotalQuestions: info.TotalQuestions,
		Stats:          info.Stats,
	})
}
