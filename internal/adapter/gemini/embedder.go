// Package gemini adapts the Google generative AI client to the embedding
// and generation interfaces the rest of the service consumes.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"helpcenter/backend/internal/errs"
	"helpcenter/backend/internal/retry"
)

// Embedder produces embeddings through the Gemini embedding API. Input order
// is preserved: vector i always corresponds to input text i.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
	batchSize int
	policy    retry.Policy
}

func NewEmbedder(client *genai.Client, model string, dimension, batchSize int, policy retry.Policy) *Embedder {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Embedder{
		client:    client,
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
		policy:    policy,
	}
}

// Dimension reports the vector width this embedder is configured for.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// EmbedBatch embeds texts in request-sized batches, concatenating results in
// input order. An empty input returns an empty slice without an API call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("%w: text %d is empty", errs.ErrEmbedding, i)
		}
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedSlice(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	slog.DebugContext(ctx, "embedded batch", "model", e.model, "texts", len(texts))
	return vectors, nil
}

// embedSlice embeds one API-sized batch, halving it recursively when the API
// rejects the request as too large.
func (e *Embedder) embedSlice(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.callBatch(ctx, texts)
	if err == nil {
		return vectors, nil
	}

	if isBatchTooLarge(err) {
		if len(texts) == 1 {
			return nil, fmt.Errorf("%w: single text exceeds the request size limit: %v", errs.ErrEmbedding, err)
		}
		mid := len(texts) / 2
		slog.WarnContext(ctx, "embedding batch rejected as too large, splitting",
			"size", len(texts), "left", mid, "right", len(texts)-mid)
		left, err := e.embedSlice(ctx, texts[:mid])
		if err != nil {
			return nil, err
		}
		right, err := e.embedSlice(ctx, texts[mid:])
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	}

	return nil, err
}

func (e *Embedder) callBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	var res *genai.BatchEmbedContentsResponse
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		batch := em.NewBatch()
		for _, t := range texts {
			batch = batch.AddContent(genai.Text(t))
		}
		var callErr error
		res, callErr = em.BatchEmbedContents(ctx, batch)
		if callErr != nil {
			if isBatchTooLarge(callErr) {
				return callErr
			}
			slog.WarnContext(ctx, "embedding call failed, retrying", "error", callErr)
			return retry.Transient(callErr)
		}
		return nil
	})
	if err != nil {
		if isBatchTooLarge(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: batch of %d: %v", errs.ErrEmbedding, len(texts), err)
	}

	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			errs.ErrEmbedding, len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at position %d", errs.ErrEmbedding, i)
		}
		if e.dimension > 0 && len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				errs.ErrEmbedding, i, len(emb.Values), e.dimension)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// isBatchTooLarge recognizes the API's rejection of an oversized batch
// request so it can be split instead of retried as-is. Other 400s (bad
// model, invalid argument) must not trigger splitting.
func isBatchTooLarge(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 400 {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "payload size") || strings.Contains(msg, "too large")
}
