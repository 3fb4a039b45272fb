// Package rag answers questions by grounding a completion model in chunks
// retrieved from the vector index.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"helpcenter/backend/internal/errs"
)

const maxTopK = 10

const systemPrompt = `You are a helpful customer support assistant for the Typeform Help Center.
Your role is to answer questions about Help Center articles accurately and concisely.

Use only the provided context from the Help Center to answer the user's question.
If the context doesn't contain enough information to answer the question, say so
explicitly and suggest contacting support.

Always be friendly, professional, and helpful. If relevant, provide step-by-step
instructions.`

// NoContextAnswer is returned without calling the completion model when
// retrieval produces nothing usable. Deterministic on purpose: no context
// means nothing to ground a generation on.
const NoContextAnswer = "I couldn't find relevant information in the Help Center to answer your question. Please try rephrasing it, or contact support for further assistance."

type Config struct {
	DefaultTopK     int
	MinScore        float64
	MaxContextChars int
}

// Engine runs the single-turn pipeline: embed the question, retrieve the
// nearest chunks, build a grounded prompt, generate. Stateless between calls.
type Engine struct {
	embedder  Embedder
	store     VectorStore
	generator Generator
	cfg       Config
}

func NewEngine(e Embedder, s VectorStore, g Generator, cfg Config) *Engine {
	if cfg.DefaultTopK < 1 {
		cfg.DefaultTopK = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 12000
	}
	return &Engine{embedder: e, store: s, generator: g, cfg: cfg}
}

// Answer runs the full pipeline for one question. topK <= 0 selects the
// configured default; values above 10 are clamped. The HTTP layer rejects
// out-of-range values before they reach here.
func (e *Engine) Answer(ctx context.Context, question string, topK int, includeSources bool) (*Answer, error) {
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	vectors, err := e.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", errs.ErrEmbedding, len(vectors))
	}

	matches, err := e.store.Query(ctx, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %v", errs.ErrRetrieval, err)
	}

	matches = e.filterByScore(matches)
	if len(matches) == 0 {
		slog.InfoContext(ctx, "no usable context, returning deterministic answer", "question_len", len(question))
		answer := &Answer{Text: NoContextAnswer, Query: question}
		if includeSources {
			// Serializes as an empty list, not null.
			answer.Sources = []Source{}
		}
		return answer, nil
	}

	used := e.fitContext(matches)
	contextBlock := formatContext(used)

	text, err := e.generator.Generate(ctx, systemPrompt, userPrompt(contextBlock, question))
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Text:       text,
		Query:      question,
		NumSources: len(used),
	}
	if includeSources {
		answer.Sources = extractSources(used)
	}

	slog.InfoContext(ctx, "answer generated", "matches", len(used), "answer_len", len(text))
	return answer, nil
}

// filterByScore drops matches below the configured relevance floor. With the
// default floor of 0 every cosine-positive match passes, matching the
// original behavior.
func (e *Engine) filterByScore(matches []Match) []Match {
	if e.cfg.MinScore <= -1 {
		return matches
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.Score >= e.cfg.MinScore {
			kept = append(kept, m)
		}
	}
	return kept
}

// fitContext bounds the combined context block, dropping the lowest-scored
// matches first. The highest-scored match is always kept, even when it alone
// exceeds the budget.
func (e *Engine) fitContext(matches []Match) []Match {
	budget := e.cfg.MaxContextChars
	var used []Match
	total := 0
	for i, m := range matches {
		if i > 0 && total+len(m.Text) > budget {
			break
		}
		used = append(used, m)
		total += len(m.Text)
	}
	return used
}

func formatContext(matches []Match) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[Source %d] %s\n%s\n\n", i+1, m.Title, m.Text)
	}
	return strings.TrimSpace(b.String())
}

func userPrompt(contextBlock, question string) string {
	return fmt.Sprintf("Context from Help Center:\n%s\n\nQuestion: %s\n\nPlease provide a helpful answer based on the context above.", contextBlock, question)
}

// extractSources deduplicates by URL. Matches arrive in descending score
// order, so the first occurrence carries the highest relevance for that
// article.
func extractSources(matches []Match) []Source {
	seen := make(map[string]bool)
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		if m.URL == "" || seen[m.URL] {
			continue
		}
		seen[m.URL] = true
		sources = append(sources, Source{
			Title:          m.Title,
			URL:            m.URL,
			RelevanceScore: m.Score,
		})
	}
	return sources
}
