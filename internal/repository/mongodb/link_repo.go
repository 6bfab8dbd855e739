package mongodb

import (
	"context"
	"fmt"

	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LinkRepository implements repository.LinkRepository over one verse-link
// collection (verses_emotions or verses_themes)
type LinkRepository struct {
	coll       *mongo.Collection
	entryField string
}

// NewLinkRepository creates a link repository for the named collection.
// entryField is the taxonomy side of the link ("emotion_id" or "theme_id").
func NewLinkRepository(db *mongo.Database, collection, entryField string) repository.LinkRepository {
	return &LinkRepository{coll: db.Collection(collection), entryField: entryField}
}

// SumWeightsByVerse aggregates link weights per verse for the given taxonomy
// entries, ordered by descending summed weight
func (r *LinkRepository) SumWeightsByVerse(ctx context.Context, entryIDs []primitive.ObjectID, limit int) ([]models.LinkedVerse, error) {
	if len(entryIDs) == 0 {
		return []models.LinkedVerse{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{r.entryField: bson.M{"$in": entryIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$verse_id",
			"weight": bson.M{"$sum": "$weight"},
		}}},
		{{Key: "$sort", Value: bson.M{"weight": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s weights: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var linked []models.LinkedVerse
	if err := cursor.All(ctx, &linked); err != nil {
		return nil, fmt.Errorf("decode linked verses: %w", err)
	}
	if linked == nil {
		linked = []models.LinkedVerse{}
	}
	return linked, nil
}
