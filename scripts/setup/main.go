// setup_indexes.go
//
// This script creates the MongoDB indexes the retrieval engine depends on:
// the composite verse index, the unique reference index, the full-text index
// on verse content, the taxonomy name indexes and the verse-link indexes.
//
// Environment variables:
//   MONGODB_URL       - MongoDB connection string (default: mongodb://localhost:27017)
//   MONGODB_DATABASE  - Database name (default: parole_du_moment_db)
//
// Usage:
//   go run scripts/setup/main.go

package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/parole-du-moment-api/pkg/schema/db"
)

func main() {
	godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.InitMongo(ctx); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer db.CloseMongo(ctx)

	if err := db.EnsureIndexes(ctx, db.GetMongo()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	log.Println("All indexes created")
}
