package mongodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerseRepository implements repository.VerseRepository on the verses collection
type VerseRepository struct {
	coll *mongo.Collection
}

// NewVerseRepository creates a new MongoDB verse repository
func NewVerseRepository(db *mongo.Database) repository.VerseRepository {
	return &VerseRepository{coll: db.Collection("verses")}
}

// FindEmbedded returns all verses of a translation that carry an embedding
func (r *VerseRepository) FindEmbedded(ctx context.Context, translation string) ([]models.Verse, error) {
	filter := bson.M{
		"translation": translation,
		"embedding":   bson.M{"$exists": true, "$ne": nil},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find embedded verses: %w", err)
	}
	return decodeVerses(ctx, cursor)
}

// TextSearch runs MongoDB full-text search over verse content
func (r *VerseRepository) TextSearch(ctx context.Context, translation string, terms []string, limit int) ([]models.Verse, error) {
	if len(terms) == 0 {
		return []models.Verse{}, nil
	}

	filter := bson.M{
		"translation": translation,
		"$text":       bson.M{"$search": strings.Join(terms, " ")},
	}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("text search verses: %w", err)
	}
	return decodeVerses(ctx, cursor)
}

// SearchByContentPattern matches verse content against a case-insensitive regex
func (r *VerseRepository) SearchByContentPattern(ctx context.Context, translation, pattern string, limit int) ([]models.Verse, error) {
	if pattern == "" {
		return []models.Verse{}, nil
	}

	filter := bson.M{
		"translation": translation,
		"content":     primitive.Regex{Pattern: pattern, Options: "i"},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("regex search verses: %w", err)
	}
	return decodeVerses(ctx, cursor)
}

// SearchLinkedByContentPattern restricts the regex match to a set of verse ids
func (r *VerseRepository) SearchLinkedByContentPattern(ctx context.Context, translation string, ids []primitive.ObjectID, pattern string, limit int) ([]models.Verse, error) {
	if len(ids) == 0 || pattern == "" {
		return []models.Verse{}, nil
	}

	filter := bson.M{
		"translation": translation,
		"_id":         bson.M{"$in": ids},
		"content":     primitive.Regex{Pattern: pattern, Options: "i"},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("linked regex search verses: %w", err)
	}
	return decodeVerses(ctx, cursor)
}

// SampleRandom draws one verse uniformly at random from a translation
func (r *VerseRepository) SampleRandom(ctx context.Context, translation string) (*models.Verse, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"translation": translation}}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample random verse: %w", err)
	}
	verses, err := decodeVerses(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if len(verses) == 0 {
		return nil, nil
	}
	return &verses[0], nil
}

// FindMissingEmbeddings returns verses of a translation without an embedding
func (r *VerseRepository) FindMissingEmbeddings(ctx context.Context, translation string, limit int) ([]models.Verse, error) {
	filter := bson.M{
		"translation": translation,
		"$or": bson.A{
			bson.M{"embedding": bson.M{"$exists": false}},
			bson.M{"embedding": nil},
		},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find verses missing embeddings: %w", err)
	}
	return decodeVerses(ctx, cursor)
}

// DistinctTranslations lists the translation codes present in the corpus
func (r *VerseRepository) DistinctTranslations(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "translation", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct translations: %w", err)
	}

	codes := make([]string, 0, len(values))
	for _, v := range values {
		if code, ok := v.(string); ok && code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// UpdateEmbedding stores the embedding vector of a single verse
func (r *VerseRepository) UpdateEmbedding(ctx context.Context, id primitive.ObjectID, embedding []float64) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"embedding": embedding}})
	if err != nil {
		return fmt.Errorf("update verse embedding: %w", err)
	}
	return nil
}

func decodeVerses(ctx context.Context, cursor *mongo.Cursor) ([]models.Verse, error) {
	defer cursor.Close(ctx)

	var verses []models.Verse
	if err := cursor.All(ctx, &verses); err != nil {
		return nil, fmt.Errorf("decode verses: %w", err)
	}
	if verses == nil {
		verses = []models.Verse{}
	}
	return verses, nil
}
