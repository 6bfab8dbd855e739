package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Verse is an immutable corpus entity stored in the verses collection.
// The embedding field is populated by the offline batch job and is the only
// field written after import.
type Verse struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Translation string             `bson:"translation" json:"translation"`
	Book        string             `bson:"book" json:"book"`
	Chapter     int                `bson:"chapter" json:"chapter"`
	Number      int                `bson:"verse" json:"verse"`
	Content     string             `bson:"content" json:"content"`
	Reference   string             `bson:"reference" json:"reference"`
	Keywords    []string           `bson:"keywords,omitempty" json:"keywords,omitempty"`
	Length      int                `bson:"length,omitempty" json:"-"`
	Embedding   []float64          `bson:"embedding,omitempty" json:"-"`
}

// TaxonomyEntry is a named emotion or theme category
type TaxonomyEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// LinkedVerse is the result of aggregating verse links for a set of
// taxonomy entries: a verse identifier with its summed association weight
type LinkedVerse struct {
	VerseID primitive.ObjectID `bson:"_id"`
	Weight  float64            `bson:"weight"`
}

// Translation describes one supported Bible translation
type Translation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code" json:"code"`
	Language    string             `bson:"language" json:"language"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// AnalysisResult is the structured emotion/theme/keyword analysis of the
// user's message, produced by an external collaborator
type AnalysisResult struct {
	Emotions []string `json:"emotions"`
	Themes   []string `json:"themes"`
	Keywords []string `json:"keywords"`
	Summary  string   `json:"summary,omitempty"`
}

// VerseResult is the selected verse returned to callers
type VerseResult struct {
	Content     string   `json:"content"`
	Reference   string   `json:"reference"`
	Keywords    []string `json:"keywords,omitempty"`
	Translation string   `json:"translation"`
	Book        string   `json:"book"`
	Chapter     int      `json:"chapter"`
	Verse       int      `json:"verse"`
}
