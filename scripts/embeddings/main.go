// compute_embeddings.go
//
// This script backfills verse embeddings: it walks the verses of each
// translation that have no stored embedding yet, embeds their content in
// batches through the configured embedding backend, and writes the vectors
// back to MongoDB. Verses are never otherwise mutated.
//
// Environment variables:
//   MONGODB_URL          - MongoDB connection string
//   MONGODB_DATABASE     - Database name
//   EMBEDDING_PROVIDER   - "local", "custom" or "vertex"
//   EMBEDDING_MODEL_PATH - ONNX model path (local provider)
//   TOKENIZER_PATH       - tokenizer.json path (local provider)
//
// Usage:
//   go run scripts/embeddings/main.go [-translation lsg] [-batch 64]

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/parole-du-moment-api/internal/repository"
	"github.com/parole-du-moment-api/internal/repository/mongodb"
	"github.com/parole-du-moment-api/pkg/schema/db"
	pkgservices "github.com/parole-du-moment-api/pkg/schema/services"
)

func main() {
	translation := flag.String("translation", "", "Only embed verses of this translation (default: all)")
	batchSize := flag.Int("batch", 64, "Number of verses to embed per batch")
	flag.Parse()

	godotenv.Load()

	ctx := context.Background()
	if err := db.InitMongo(ctx); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer db.CloseMongo(ctx)

	embeddingsSvc := pkgservices.GetEmbeddingsService()
	if err := pkgservices.GetInitError(); err != nil {
		log.Fatalf("Failed to initialize embeddings service: %v", err)
	}

	verseRepo := mongodb.NewVerseRepository(db.GetMongo())

	translations := []string{*translation}
	if *translation == "" {
		var err error
		translations, err = verseRepo.DistinctTranslations(ctx)
		if err != nil {
			log.Fatalf("Failed to list translations: %v", err)
		}
	}

	start := time.Now()
	var total int
	for _, code := range translations {
		n, err := embedTranslation(ctx, verseRepo, embeddingsSvc, code, *batchSize)
		if err != nil {
			log.Fatalf("Embedding translation %s failed: %v", code, err)
		}
		log.Printf("Translation %s: embedded %d verses", code, n)
		total += n
	}
	log.Printf("Done: %d verses embedded in %s", total, time.Since(start).Round(time.Second))
}

// embedTranslation repeatedly pulls a batch of verses without embeddings,
// embeds their content and writes the vectors back, until none remain.
func embedTranslation(ctx context.Context, repo repository.VerseRepository, svc *pkgservices.EmbeddingsService, translation string, batchSize int) (int, error) {
	var total int
	for {
		verses, err := repo.FindMissingEmbeddings(ctx, translation, batchSize)
		if err != nil {
			return total, err
		}
		if len(verses) == 0 {
			return total, nil
		}

		texts := make([]string, len(verses))
		for i, v := range verses {
			texts[i] = v.Content
		}

		embeddings, err := svc.EmbedVerseBatch(ctx, texts)
		if err != nil {
			return total, err
		}
		if len(embeddings) != len(verses) {
			return total, fmt.Errorf("embedding count mismatch: got %d for %d verses", len(embeddings), len(verses))
		}

		for i, v := range verses {
			if err := repo.UpdateEmbedding(ctx, v.ID, embeddings[i]); err != nil {
				return total, err
			}
			total++
		}
		log.Printf("Translation %s: %d verses embedded so far", translation, total)
	}
}
