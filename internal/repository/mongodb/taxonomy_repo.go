package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaxonomyRepository implements repository.TaxonomyRepository over one
// taxonomy collection (emotions or themes)
type TaxonomyRepository struct {
	coll *mongo.Collection
}

// NewTaxonomyRepository creates a taxonomy repository for the named collection
func NewTaxonomyRepository(db *mongo.Database, collection string) repository.TaxonomyRepository {
	return &TaxonomyRepository{coll: db.Collection(collection)}
}

// ListAll returns every entry of the collection
func (r *TaxonomyRepository) ListAll(ctx context.Context) ([]models.TaxonomyEntry, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.coll.Name(), err)
	}
	return decodeEntries(ctx, cursor)
}

// SearchByName finds entries by exact name, then substring over the name,
// then substring over the description. Each stage runs only when the
// previous one matched nothing.
func (r *TaxonomyRepository) SearchByName(ctx context.Context, name string, limit int) ([]models.TaxonomyEntry, error) {
	if name == "" {
		return []models.TaxonomyEntry{}, nil
	}

	escaped := regexp.QuoteMeta(name)
	filters := []bson.M{
		{"name": primitive.Regex{Pattern: "^" + escaped + "$", Options: "i"}},
		{"name": primitive.Regex{Pattern: escaped, Options: "i"}},
		{"description": primitive.Regex{Pattern: escaped, Options: "i"}},
	}

	for _, filter := range filters {
		cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
		if err != nil {
			return nil, fmt.Errorf("search %s by name: %w", r.coll.Name(), err)
		}
		entries, err := decodeEntries(ctx, cursor)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	return []models.TaxonomyEntry{}, nil
}

func decodeEntries(ctx context.Context, cursor *mongo.Cursor) ([]models.TaxonomyEntry, error) {
	defer cursor.Close(ctx)

	var entries []models.TaxonomyEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode taxonomy entries: %w", err)
	}
	if entries == nil {
		entries = []models.TaxonomyEntry{}
	}
	return entries, nil
}
