package repository

import (
	"context"

	"github.com/parole-du-moment-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerseRepository defines read access to the verse corpus plus the single
// write path used by the offline embedding job
type VerseRepository interface {
	// FindEmbedded returns all verses of a translation that carry an embedding
	FindEmbedded(ctx context.Context, translation string) ([]models.Verse, error)

	// TextSearch runs full-text search over verse content, ranked by engine score
	TextSearch(ctx context.Context, translation string, terms []string, limit int) ([]models.Verse, error)

	// SearchByContentPattern matches verse content against a case-insensitive regex
	SearchByContentPattern(ctx context.Context, translation, pattern string, limit int) ([]models.Verse, error)

	// SearchLinkedByContentPattern restricts the regex match to a set of verse ids
	SearchLinkedByContentPattern(ctx context.Context, translation string, ids []primitive.ObjectID, pattern string, limit int) ([]models.Verse, error)

	// SampleRandom draws one verse uniformly at random from a translation
	SampleRandom(ctx context.Context, translation string) (*models.Verse, error)

	// FindMissingEmbeddings returns verses of a translation without an embedding
	FindMissingEmbeddings(ctx context.Context, translation string, limit int) ([]models.Verse, error)

	// DistinctTranslations lists the translation codes present in the corpus
	DistinctTranslations(ctx context.Context) ([]string, error)

	// UpdateEmbedding stores the embedding vector of a single verse
	UpdateEmbedding(ctx context.Context, id primitive.ObjectID, embedding []float64) error
}

// TaxonomyRepository defines read access to one taxonomy collection
// (emotions or themes)
type TaxonomyRepository interface {
	// ListAll returns every entry of the collection
	ListAll(ctx context.Context) ([]models.TaxonomyEntry, error)

	// SearchByName finds entries by exact name, then substring over the name,
	// then substring over the description
	SearchByName(ctx context.Context, name string, limit int) ([]models.TaxonomyEntry, error)
}

// TranslationRepository defines read access to the translations collection
type TranslationRepository interface {
	// ListAll returns every supported translation, ordered by code
	ListAll(ctx context.Context) ([]models.Translation, error)
}

// LinkRepository defines read access to one verse-link collection
// (verses_emotions or verses_themes)
type LinkRepository interface {
	// SumWeightsByVerse aggregates link weights per verse for the given
	// taxonomy entries, ordered by descending summed weight
	SumWeightsByVerse(ctx context.Context, entryIDs []primitive.ObjectID, limit int) ([]models.LinkedVerse, error)
}
