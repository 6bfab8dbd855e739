package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/parole-du-moment-api/pkg/schema/config"
)

// EmbeddingsService handles text embedding operations using a pluggable backend
type EmbeddingsService struct {
	embedder Embedder
}

var (
	embeddingsService *EmbeddingsService
	embeddingsOnce    sync.Once
	initErr           error
)

// NewEmbeddingsService wraps an explicit embedder backend
func NewEmbeddingsService(embedder Embedder) *EmbeddingsService {
	return &EmbeddingsService{embedder: embedder}
}

// GetEmbeddingsService returns the singleton embeddings service.
// The backend is constructed on first use; concurrent callers block on the
// single in-flight initialization.
func GetEmbeddingsService() *EmbeddingsService {
	embeddingsOnce.Do(func() {
		cfg := config.GetConfig()
		ctx := context.Background()

		var embedder Embedder
		switch cfg.EmbeddingProvider {
		case "vertex":
			var err error
			embedder, err = NewVertexEmbedder(ctx, cfg)
			if err != nil {
				initErr = fmt.Errorf("failed to create Vertex AI embedder: %w", err)
				return
			}
		case "custom":
			embedder = NewCustomEmbedder(cfg)
		default:
			var err error
			embedder, err = NewLocalEmbedder(cfg)
			if err != nil {
				initErr = fmt.Errorf("failed to create local ONNX embedder: %w", err)
				return
			}
		}

		embeddingsService = &EmbeddingsService{
			embedder: embedder,
		}
	})
	return embeddingsService
}

// GetInitError returns any error that occurred during initialization.
// A non-nil error means the vector stage is unavailable for this process.
func GetInitError() error {
	return initErr
}

// EmbedQuery embeds a query for retrieval
func (s *EmbeddingsService) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	return s.embedder.Embed(ctx, query, TaskTypeQuery)
}

// EmbedVerse embeds a verse as a document for retrieval
func (s *EmbeddingsService) EmbedVerse(ctx context.Context, text string) ([]float64, error) {
	return s.embedder.Embed(ctx, text, TaskTypeDocument)
}

// EmbedVerseBatch embeds multiple verses as documents for retrieval
func (s *EmbeddingsService) EmbedVerseBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return s.embedder.EmbedBatch(ctx, texts, TaskTypeDocument)
}

// CosineSimilarity computes the cosine similarity of two embeddings.
// Both inputs are expected to be unit-normalized, so this is a dot product.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}

// normalizeVector scales a vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func normalizeVector(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] *= norm
	}
	return v
}

// ScoredIndex pairs a candidate index with its similarity score
type ScoredIndex struct {
	Index int
	Score float64
}

// TopK scores every candidate against the query vector and returns the k best,
// ordered by descending score. Ties keep the first-seen candidate first.
func TopK(query []float64, candidates [][]float64, k int) []ScoredIndex {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	scored := make([]ScoredIndex, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredIndex{Index: i, Score: CosineSimilarity(query, c)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
