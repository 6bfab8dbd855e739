package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the retrieval engine depends on.
// Safe to call repeatedly; MongoDB treats existing indexes as a no-op.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	verseIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "translation", Value: 1},
				{Key: "book", Value: 1},
				{Key: "chapter", Value: 1},
				{Key: "verse", Value: 1},
			},
		},
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "translation", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "content", Value: "text"}},
		},
	}
	if _, err := database.Collection("verses").Indexes().CreateMany(ctx, verseIndexes); err != nil {
		return fmt.Errorf("create verse indexes: %w", err)
	}

	for _, coll := range []string{"emotions", "themes"} {
		nameIndex := mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := database.Collection(coll).Indexes().CreateOne(ctx, nameIndex); err != nil {
			return fmt.Errorf("create %s name index: %w", coll, err)
		}
	}

	linkCollections := map[string]string{
		"verses_emotions": "emotion_id",
		"verses_themes":   "theme_id",
	}
	for coll, entryField := range linkCollections {
		linkIndexes := []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "verse_id", Value: 1},
					{Key: entryField, Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "verse_id", Value: 1}}},
			{Keys: bson.D{{Key: entryField, Value: 1}}},
		}
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, linkIndexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}

	translationIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := database.Collection("translations").Indexes().CreateOne(ctx, translationIndex); err != nil {
		return fmt.Errorf("create translation index: %w", err)
	}

	return nil
}
