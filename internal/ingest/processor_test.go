package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"helpcenter/backend/internal/catalog"
	"helpcenter/backend/internal/errs"
	"helpcenter/backend/internal/ingest"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func longArticle(id string, paragraphs int) catalog.Article {
	var b strings.Builder
	for i := 0; i < paragraphs; i++ {
		b.WriteString("This paragraph talks about forms and translations in enough detail to fill space. ")
		b.WriteString("It continues with another sentence so the chunker has sentence boundaries to work with.\n\n")
	}
	return catalog.Article{
		ID:       id,
		Title:    "Article " + id,
		Content:  b.String(),
		URL:      "https://example.com/articles/" + id,
		Category: "test",
	}
}

func TestChunkArticle(t *testing.T) {
	t.Run("short article yields one chunk equal to content", func(t *testing.T) {
		a := catalog.Article{ID: "a1", Title: "T", Content: "Short content.", URL: "u", Category: "c"}
		chunks := ingest.ChunkArticle(a, 1000, 200)

		assert.Len(t, chunks, 1)
		assert.Equal(t, "Short content.", chunks[0].Text)
		assert.Equal(t, "a1#chunk-0", chunks[0].ID)
		assert.Equal(t, 1, chunks[0].Metadata.TotalChunks)
	})

	t.Run("empty article yields zero chunks", func(t *testing.T) {
		a := catalog.Article{ID: "a1", Content: ""}
		assert.Empty(t, ingest.ChunkArticle(a, 1000, 200))
	})

	t.Run("chunk indices are contiguous and totals consistent", func(t *testing.T) {
		a := longArticle("a1", 20)
		chunks := ingest.ChunkArticle(a, 500, 100)

		assert.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.Equal(t, i, c.Metadata.ChunkIndex)
			assert.Equal(t, i, c.SequenceIndex)
			assert.Equal(t, len(chunks), c.Metadata.TotalChunks)
			assert.Equal(t, "a1", c.ArticleID)
			assert.Equal(t, a.Title, c.Metadata.Title)
			assert.Equal(t, a.URL, c.Metadata.URL)
		}
	})

	t.Run("deterministic ids across runs", func(t *testing.T) {
		a := longArticle("a1", 20)
		first := ingest.ChunkArticle(a, 500, 100)
		second := ingest.ChunkArticle(a, 500, 100)

		assert.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
			assert.Equal(t, first[i].Text, second[i].Text)
		}
	})
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("zips embeddings by position", func(t *testing.T) {
		articles := []catalog.Article{longArticle("a1", 15), longArticle("a2", 15)}

		expected := 0
		for _, a := range articles {
			expected += len(ingest.ChunkArticle(a, 1000, 200))
		}

		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", ctx, mock.MatchedBy(func(texts []string) bool {
			return len(texts) == expected
		})).Return(makeVectors(expected, 4), nil).Once()

		p := ingest.NewProcessor(embedder, 1000, 200)
		embedded, err := p.Process(ctx, articles)

		assert.NoError(t, err)
		assert.Len(t, embedded, expected)
		for i, ec := range embedded {
			// makeVectors encodes the position in the first component.
			assert.Equal(t, float32(i), ec.Embedding[0])
		}
		embedder.AssertExpectations(t)
	})

	t.Run("empty catalog embeds nothing", func(t *testing.T) {
		embedder := new(MockEmbedder)
		p := ingest.NewProcessor(embedder, 1000, 200)

		embedded, err := p.Process(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, embedded)
		embedder.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	})

	t.Run("embed failure wraps processing error", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", ctx, mock.Anything).
			Return(nil, errors.New("service down")).Once()

		p := ingest.NewProcessor(embedder, 1000, 200)
		_, err := p.Process(ctx, []catalog.Article{longArticle("a1", 15)})

		assert.ErrorIs(t, err, errs.ErrProcessing)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", ctx, mock.Anything).
			Return(makeVectors(1, 4), nil).Once()

		p := ingest.NewProcessor(embedder, 500, 100)
		_, err := p.Process(ctx, []catalog.Article{longArticle("a1", 20)})

		assert.ErrorIs(t, err, errs.ErrProcessing)
		assert.Contains(t, err.Error(), "mismatch")
	})

	t.Run("two-article catalog counts add up", func(t *testing.T) {
		articles := []catalog.Article{longArticle("a1", 25), longArticle("a2", 10)}
		perArticle := len(ingest.ChunkArticle(articles[0], 1000, 200)) +
			len(ingest.ChunkArticle(articles[1], 1000, 200))

		embedder := new(MockEmbedder)
		embedder.On("EmbedBatch", ctx, mock.Anything).
			Return(makeVectors(perArticle, 4), nil).Once()

		p := ingest.NewProcessor(embedder, 1000, 200)
		embedded, err := p.Process(ctx, articles)

		assert.NoError(t, err)
		assert.Len(t, embedded, perArticle)
	})
}

func makeVectors(n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		v[0] = float32(i)
		out[i] = v
	}
	return out
}
