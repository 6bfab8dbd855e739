package services

import "context"

// TaskType represents the type of embedding task
type TaskType string

const (
	TaskTypeQuery    TaskType = "RETRIEVAL_QUERY"
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// Embedder defines the interface for text embedding operations
type Embedder interface {
	// Embed generates a unit-normalized embedding for a single text
	Embed(ctx context.Context, text string, taskType TaskType) ([]float64, error)

	// EmbedBatch generates unit-normalized embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float64, error)
}
