// Package index exposes the index management endpoints: populate, clear,
// and stats.
package index

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	adapter "helpcenter/backend/internal/adapter/weaviate"
	"helpcenter/backend/internal/catalog"
	"helpcenter/backend/internal/ingest"
	"helpcenter/backend/internal/middleware"
	"helpcenter/backend/internal/vector"
)

// Processor turns articles into embedded chunks. Satisfied by
// *ingest.Processor.
type Processor interface {
	Process(ctx context.Context, articles []catalog.Article) ([]ingest.EmbeddedChunk, error)
}

// VectorIndex is the slice of the store this feature needs.
type VectorIndex interface {
	Upsert(ctx context.Context, chunks []ingest.EmbeddedChunk) (adapter.UpsertResult, error)
	DeleteAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (vector.Stats, error)
}

type Handler struct {
	processor Processor
	index     VectorIndex
	articles  func() []catalog.Article
}

func NewHandler(processor Processor, index VectorIndex, articles func() []catalog.Article) *Handler {
	if articles == nil {
		articles = catalog.Load
	}
	return &Handler{processor: processor, index: index, articles: articles}
}

// Populate handles POST /index/populate. It runs the full ingestion pipeline
// over the article catalog: chunk, embed, upsert.
func (h *Handler) Populate(w http.ResponseWriter, r *http.Request) {
	articles := h.articles()
	if len(articles) == 0 {
		h.writeError(r.Context(), w, "NOT_FOUND", "No articles loaded", http.StatusNotFound)
		return
	}

	chunks, err := h.processor.Process(r.Context(), articles)
	if err != nil {
		slog.ErrorContext(r.Context(), "population failed", "error", err, "articles", len(articles))
		h.writeError(r.Context(), w, "PROCESSING_ERROR", "Failed to populate index: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := h.index.Upsert(r.Context(), chunks)
	if err != nil {
		slog.ErrorContext(r.Context(), "upsert failed", "error", err, "chunks", len(chunks))
		h.writeError(r.Context(), w, "VECTOR_STORE_ERROR", "Failed to populate index: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "index populated",
		"articles", len(articles), "chunks", len(chunks), "batches", result.Batches)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"articles_processed": len(articles),
		"chunks_created":     len(chunks),
		"total_upserted":     result.Upserted,
		"batches":            result.Batches,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Clear handles DELETE /index/clear.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.index.DeleteAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "clear failed", "error", err)
		h.writeError(r.Context(), w, "VECTOR_STORE_ERROR", "Failed to clear index: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"vectors_deleted": deleted,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// GetStats handles GET /index/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.index.Stats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "stats failed", "error", err)
		h.writeError(r.Context(), w, "VECTOR_STORE_ERROR", "Failed to fetch index stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
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
