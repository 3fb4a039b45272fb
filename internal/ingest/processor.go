// Package ingest turns the article catalog into embedded, metadata-tagged
// chunks ready for the vector index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"helpcenter/backend/internal/catalog"
	"helpcenter/backend/internal/errs"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Processor struct {
	embedder  Embedder
	chunkSize int
	overlap   int
}

func NewProcessor(e Embedder, chunkSize, overlap int) *Processor {
	return &Processor{embedder: e, chunkSize: chunkSize, overlap: overlap}
}

// Process chunks every article, embeds all chunk texts in one batched call
// to amortize round-trips, and zips the embeddings back by position.
func (p *Processor) Process(ctx context.Context, articles []catalog.Article) ([]EmbeddedChunk, error) {
	var chunks []Chunk
	for _, a := range articles {
		cs := ChunkArticle(a, p.chunkSize, p.overlap)
		slog.InfoContext(ctx, "article chunked", "article_id", a.ID, "chunks", len(cs))
		chunks = append(chunks, cs...)
	}

	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding %d chunks: %v", errs.ErrProcessing, len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedding count mismatch: got %d, want %d",
			errs.ErrProcessing, len(vectors), len(chunks))
	}

	embedded := make([]EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = EmbeddedChunk{Chunk: c, Embedding: vectors[i]}
	}

	slog.InfoContext(ctx, "articles processed", "articles", len(articles), "chunks", len(embedded))
	return embedded, nil
}
