// Package query exposes the question-answering endpoint.
package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"helpcenter/backend/internal/middleware"
	"helpcenter/backend/internal/rag"
)

const maxQuestionLen = 1000

// Engine answers a single question. Satisfied by *rag.Engine.
type Engine interface {
	Answer(ctx context.Context, question string, topK int, includeSources bool) (*rag.Answer, error)
}

type Handler struct {
	engine Engine
}

func NewHandler(engine Engine) *Handler {
	return &Handler{engine: engine}
}

// Ask handles POST /query.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		h.writeError(r.Context(), w, "SERVICE_UNAVAILABLE", "RAG engine not initialized", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Question       string `json:"question"`
		TopK           *int   `json:"top_k"`
		IncludeSources *bool  `json:"include_sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Question == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question is required", http.StatusBadRequest)
		return
	}
	if len(req.Question) > maxQuestionLen {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Question must be at most 1000 characters", http.StatusBadRequest)
		return
	}

	topK := 0
	if req.TopK != nil {
		if *req.TopK < 1 || *req.TopK > 10 {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", "top_k must be between 1 and 10", http.StatusBadRequest)
			return
		}
		topK = *req.TopK
	}

	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	answer, err := h.engine.Answer(r.Context(), req.Question, topK, includeSources)
	if err != nil {
		slog.ErrorContext(r.Context(), "query failed", "error", err, "question_len", len(req.Question))
		h.writeError(r.Context(), w, "QUERY_FAILED", "Query processing failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
