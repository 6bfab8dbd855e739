package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parole-du-moment-api/pkg/schema/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	mongoOnce   sync.Once
	mongoMu     sync.RWMutex
)

// mongoEnabled tracks whether MongoDB was initialized
var mongoEnabled bool

// InitMongo initializes the MongoDB client and database handle.
func InitMongo(ctx context.Context) error {
	var initErr error
	mongoOnce.Do(func() {
		cfg := config.GetConfig()

		if cfg.MongoURI == "" {
			initErr = fmt.Errorf("MONGODB_URL is required")
			return
		}

		opts := options.Client().
			ApplyURI(cfg.MongoURI).
			SetMaxPoolSize(25).
			SetMaxConnIdleTime(1 * time.Minute).
			SetServerSelectionTimeout(5 * time.Second)

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			initErr = fmt.Errorf("failed to connect to MongoDB: %w", err)
			return
		}

		// Verify connectivity
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			initErr = fmt.Errorf("failed to ping MongoDB: %w", err)
			return
		}

		mongoClient = client
		mongoDB = client.Database(cfg.MongoDatabase)
		mongoEnabled = true
	})
	return initErr
}

// MongoEnabled returns whether MongoDB is available
func MongoEnabled() bool {
	return mongoEnabled
}

// GetMongo returns the MongoDB database handle
func GetMongo() *mongo.Database {
	mongoMu.RLock()
	defer mongoMu.RUnlock()
	return mongoDB
}

// GetClient returns the underlying MongoDB client
func GetClient() *mongo.Client {
	mongoMu.RLock()
	defer mongoMu.RUnlock()
	return mongoClient
}

// CloseMongo disconnects the MongoDB client
func CloseMongo(ctx context.Context) error {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if mongoClient != nil {
		return mongoClient.Disconnect(ctx)
	}
	return nil
}
