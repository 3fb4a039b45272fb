// Package weaviate persists embedded chunks in a Weaviate class and serves
// nearest-neighbor queries over them.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"helpcenter/backend/internal/errs"
	"helpcenter/backend/internal/ingest"
	"helpcenter/backend/internal/rag"
	"helpcenter/backend/internal/retry"
	"helpcenter/backend/internal/vector"
)

// nominalCapacity is the vector count treated as a full index when reporting
// fullness. Weaviate has no hard cap, so this is a reporting convention only.
const nominalCapacity = 100_000

type Store struct {
	client    *weaviate.Client
	dimension int
	batchSize int
	policy    retry.Policy
}

// UpsertResult reports how much work one Upsert call did.
type UpsertResult struct {
	Upserted int
	Batches  int
}

func NewStore(client *weaviate.Client, dimension, batchSize int, policy retry.Policy) *Store {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Store{client: client, dimension: dimension, batchSize: batchSize, policy: policy}
}

// Upsert writes embedded chunks in batches. Object IDs are derived
// deterministically from the chunk ID, so re-populating overwrites chunks in
// place instead of duplicating them.
func (s *Store) Upsert(ctx context.Context, chunks []ingest.EmbeddedChunk) (UpsertResult, error) {
	var result UpsertResult
	if len(chunks) == 0 {
		return result, nil
	}

	for i, c := range chunks {
		if s.dimension > 0 && len(c.Embedding) != s.dimension {
			return result, fmt.Errorf("%w: chunk %d has dimension %d, expected %d",
				errs.ErrVectorStore, i, len(c.Embedding), s.dimension)
		}
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.upsertBatch(ctx, chunks[start:end]); err != nil {
			return result, err
		}
		result.Upserted += end - start
		result.Batches++
	}

	slog.InfoContext(ctx, "chunks upserted", "count", result.Upserted, "batches", result.Batches)
	return result, nil
}

func (s *Store) upsertBatch(ctx context.Context, chunks []ingest.EmbeddedChunk) error {
	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.ID))
		objects[i] = &models.Object{
			ID:    strfmt.UUID(id.String()),
			Class: vector.ClassName,
			Properties: map[string]interface{}{
				"chunkId":     c.ID,
				"articleId":   c.ArticleID,
				"text":        c.Text,
				"title":       c.Metadata.Title,
				"url":         c.Metadata.URL,
				"category":    c.Metadata.Category,
				"chunkIndex":  c.Metadata.ChunkIndex,
				"totalChunks": c.Metadata.TotalChunks,
			},
			Vector: c.Embedding,
		}
	}

	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			slog.WarnContext(ctx, "upsert batch failed, retrying", "size", len(objects), "error", err)
			return retry.Transient(err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return retry.Transient(fmt.Errorf("object %s: %s", r.ID, r.Result.Errors.Error[0].Message))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: upsert batch of %d: %v", errs.ErrVectorStore, len(objects), err)
	}
	return nil
}

// Query returns the topK nearest chunks by cosine similarity, best first.
// Weaviate reports cosine distance, so score is 1 - distance.
func (s *Store) Query(ctx context.Context, queryVector []float32, topK int) ([]rag.Match, error) {
	ctx, cancel := s.policy.CallContext(ctx)
	defer cancel()

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(queryVector)

	fields := []graphql.Field{
		{Name: "chunkId"},
		{Name: "articleId"},
		{Name: "text"},
		{Name: "title"},
		{Name: "url"},
		{Name: "category"},
		{Name: "chunkIndex"},
		{Name: "totalChunks"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", errs.ErrVectorStore, err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql error: %v", errs.ErrVectorStore, res.Errors[0].Message)
	}

	var matches []rag.Match
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objects, ok := data[vector.ClassName].([]interface{}); ok {
			for _, o := range objects {
				props, ok := o.(map[string]interface{})
				if !ok {
					continue
				}
				match := rag.Match{}
				if v, ok := props["chunkId"].(string); ok {
					match.ChunkID = v
				}
				if v, ok := props["text"].(string); ok {
					match.Text = v
				}
				if v, ok := props["title"].(string); ok {
					match.Title = v
				}
				if v, ok := props["url"].(string); ok {
					match.URL = v
				}
				if v, ok := props["category"].(string); ok {
					match.Category = v
				}
				if v, ok := props["chunkIndex"].(float64); ok {
					match.ChunkIndex = int(v)
				}
				if v, ok := props["totalChunks"].(float64); ok {
					match.TotalChunks = int(v)
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if distance, ok := additional["distance"].(float64); ok {
						match.Score = 1 - distance
					}
				}
				matches = append(matches, match)
			}
		}
	}

	return matches, nil
}

// DeleteAll removes every chunk from the class. Batch deletes are capped per
// call, so it loops until a pass matches nothing.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	where := filters.Where().
		WithPath([]string{"articleId"}).
		WithOperator(filters.Like).
		WithValueText("*")

	deleted := 0
	for {
		callCtx, cancel := s.policy.CallContext(ctx)
		resp, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(vector.ClassName).
			WithOutput("minimal").
			WithWhere(where).
			Do(callCtx)
		cancel()
		if err != nil {
			return deleted, fmt.Errorf("%w: delete all: %v", errs.ErrVectorStore, err)
		}
		if resp == nil || resp.Results == nil || resp.Results.Matches == 0 {
			break
		}
		deleted += int(resp.Results.Successful)
		if resp.Results.Successful == 0 {
			return deleted, fmt.Errorf("%w: delete all: %d objects matched but none deleted",
				errs.ErrVectorStore, resp.Results.Matches)
		}
	}

	slog.InfoContext(ctx, "index cleared", "deleted", deleted)
	return deleted, nil
}

// Stats reports the vector count via a meta aggregation, along with the
// configured dimension and a fullness ratio against the nominal capacity.
func (s *Store) Stats(ctx context.Context) (vector.Stats, error) {
	ctx, cancel := s.policy.CallContext(ctx)
	defer cancel()

	meta := graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return vector.Stats{}, fmt.Errorf("%w: stats: %v", errs.ErrVectorStore, err)
	}
	if len(res.Errors) > 0 {
		return vector.Stats{}, fmt.Errorf("%w: graphql error: %v", errs.ErrVectorStore, res.Errors[0].Message)
	}

	count := 0
	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if groups, ok := data[vector.ClassName].([]interface{}); ok && len(groups) > 0 {
			if group, ok := groups[0].(map[string]interface{}); ok {
				if m, ok := group["meta"].(map[string]interface{}); ok {
					if c, ok := m["count"].(float64); ok {
						count = int(c)
					}
				}
			}
		}
	}

	return vector.Stats{
		TotalVectors: count,
		Dimension:    s.dimension,
		Fullness:     float64(count) / nominalCapacity,
	}, nil
}
