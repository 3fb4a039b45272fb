// Package errs holds the sentinel errors shared across the pipeline.
// Callers wrap them with fmt.Errorf("%w: ...") and match with errors.Is,
// so the HTTP layer can map failure classes to status codes without
// depending on any adapter package.
package errs

import "errors"

var (
	// ErrEmbedding covers failures of the external embedding service after
	// retries are exhausted.
	ErrEmbedding = errors.New("embedding service failure")

	// ErrVectorStore covers connectivity and request failures against the
	// vector index.
	ErrVectorStore = errors.New("vector store failure")

	// ErrRetrieval marks a failed retrieval step of the answer pipeline.
	// An empty result set is NOT an error; it routes to the no-context answer.
	ErrRetrieval = errors.New("retrieval failure")

	// ErrGeneration covers completion-model failures after retries.
	ErrGeneration = errors.New("generation failure")

	// ErrProcessing covers chunking/embedding failures during bulk population.
	ErrProcessing = errors.New("processing failure")
)
