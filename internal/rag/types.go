package rag

import "context"

// Match is one retrieved chunk with its cosine similarity score in [-1, 1].
// Ephemeral, produced per query.
type Match struct {
	ChunkID     string
	Score       float64
	Text        string
	Title       string
	URL         string
	Category    string
	ChunkIndex  int
	TotalChunks int
}

type Source struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevance_score"`
}

type Answer struct {
	Text       string   `json:"answer"`
	Query      string   `json:"query"`
	NumSources int      `json:"num_sources"`
	Sources    []Source `json:"sources"`
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
