package ingest

import (
	"fmt"

	"helpcenter/backend/internal/catalog"
	"helpcenter/backend/internal/text"
)

type Metadata struct {
	Title       string
	URL         string
	Category    string
	ChunkIndex  int
	TotalChunks int
}

// Chunk is a bounded substring of an article, the unit of retrieval.
// IDs are deterministic so re-indexing upserts over the previous vectors.
type Chunk struct {
	ID            string
	ArticleID     string
	Text          string
	SequenceIndex int
	Metadata      Metadata
}

// EmbeddedChunk is a Chunk with its embedding attached. Never mutated after
// creation.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// ChunkArticle splits one article into metadata-tagged chunks. Empty content
// yields zero chunks.
func ChunkArticle(a catalog.Article, chunkSize, overlap int) []Chunk {
	parts := text.Split(a.Content, chunkSize, overlap)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			ID:            fmt.Sprintf("%s#chunk-%d", a.ID, i),
			ArticleID:     a.ID,
			Text:          part,
			SequenceIndex: i,
			Metadata: Metadata{
				Title:       a.Title,
				URL:         a.URL,
				Category:    a.Category,
				ChunkIndex:  i,
				TotalChunks: len(parts),
			},
		})
	}
	return chunks
}
