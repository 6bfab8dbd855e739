package mongodb

import (
	"context"
	"fmt"

	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TranslationRepository implements repository.TranslationRepository on the
// translations collection
type TranslationRepository struct {
	coll *mongo.Collection
}

// NewTranslationRepository creates a new MongoDB translation repository
func NewTranslationRepository(db *mongo.Database) repository.TranslationRepository {
	return &TranslationRepository{coll: db.Collection("translations")}
}

// ListAll returns every supported translation, ordered by code
func (r *TranslationRepository) ListAll(ctx context.Context) ([]models.Translation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"code": 1}))
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer cursor.Close(ctx)

	var translations []models.Translation
	if err := cursor.All(ctx, &translations); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}
	if translations == nil {
		translations = []models.Translation{}
	}
	return translations, nil
}
