package api

import "net/http"

func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /health", h.health)

	// Banks
	mux.HandleFunc("GET /api/banks", h.listBanks)
	mux.HandleFunc("POST /api/banks/load", h.loadBank)
	mux.HandleFunc("GET /api/banks/stats", h.bankStats)

	// Sessions
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{sessionID}", h.deleteSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}/questions/{index}", h.getQuestion)
	mux.HandleFunc("POST /api/sessions/{sessionID}/questions/{index}/answer", h.submitAnswer)
	mux.HandleFunc("POST /api/sessions/{sessionID}/questions/{index}/view_answer", h.viewAnswer)
	mux.HandleFunc("POST /api/sessions/{sessionID}/submit", h.submitSession)

	// Wrong books
	mux.HandleFunc("POST /api/sessions/{sessionID}/wrong_books", h.saveWrongBook)
	mux.HandleFunc("POST /api/sessions/{sessionID}/wrong_books/generate", h.generateWrongBook)
	mux.HandleFunc("POST /api/wrong_books", h.saveWrongQuestions)
	mux.HandleFunc("GET /api/wrong_books", h.listWrongBooks)
}

// health godoc
// @Summary  Liveness check
// @Tags     Health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
