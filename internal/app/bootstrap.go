package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/api/option"

	"helpcenter/backend/internal/adapter/gemini"
	wstore "helpcenter/backend/internal/adapter/weaviate"
	"helpcenter/backend/internal/config"
	"helpcenter/backend/internal/ingest"
	"helpcenter/backend/internal/rag"
	"helpcenter/backend/internal/retry"
	"helpcenter/backend/internal/vector"
)

// Dependencies holds the wired pipeline components.
type Dependencies struct {
	GenAI     *genai.Client
	Store     *wstore.Store
	Processor *ingest.Processor
	Engine    *rag.Engine
}

func (d *Dependencies) Close() {
	if d.GenAI != nil {
		if err := d.GenAI.Close(); err != nil {
			slog.Warn("failed to close genai client", "error", err)
		}
	}
}

// Bootstrap connects to Gemini and Weaviate, ensures the chunk class exists,
// and wires the processor and the RAG engine. Extra client options are used
// by tests to point the Gemini client at a fake endpoint.
func Bootstrap(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*Dependencies, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey)}, opts...)
	genaiClient, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("genai client error: %w", err)
	}

	wCfg := weaviate.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
	wClient, err := weaviate.NewClient(wCfg)
	if err != nil {
		genaiClient.Close()
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}

	wAdapter := vector.NewWeaviateClientAdapter(wClient)
	if err := EnsureSchemaWithRetry(ctx, wAdapter, cfg.BootstrapRetryAttempts, cfg.BootstrapRetryDelay); err != nil {
		genaiClient.Close()
		return nil, fmt.Errorf("weaviate schema error: %w", err)
	}
	slog.Info("weaviate schema ensured", "class", vector.ClassName)

	policy := retry.Policy{
		Attempts:    cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		CallTimeout: cfg.CallTimeout,
	}

	embedder := gemini.NewEmbedder(genaiClient, cfg.EmbeddingModel, cfg.EmbeddingDim, cfg.EmbedBatchSize, policy)
	generator := gemini.NewGenerator(genaiClient, cfg.CompletionModel, float64(cfg.Temperature), cfg.MaxTokens, policy)
	store := wstore.NewStore(wClient, cfg.EmbeddingDim, cfg.UpsertBatchSize, policy)

	processor := ingest.NewProcessor(embedder, cfg.ChunkSize, cfg.ChunkOverlap)
	engine := rag.NewEngine(embedder, store, generator, rag.Config{
		DefaultTopK:     cfg.TopK,
		MinScore:        cfg.MinScore,
		MaxContextChars: cfg.MaxContextChars,
	})

	return &Dependencies{
		GenAI:     genaiClient,
		Store:     store,
		Processor: processor,
		Engine:    engine,
	}, nil
}

// EnsureSchemaWithRetry keeps trying the schema check until it succeeds or
// attempts run out. Weaviate may still be starting when the service boots.
func EnsureSchemaWithRetry(ctx context.Context, client vector.SchemaClient, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = vector.EnsureSchema(ctx, client); err == nil {
			return nil
		}
		if i < attempts-1 {
			slog.Warn("failed to ensure weaviate schema, retrying...", "attempt", i+1, "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
