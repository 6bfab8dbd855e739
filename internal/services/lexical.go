package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// lexicalQuery carries the inputs shared by all lexical strategies
type lexicalQuery struct {
	translation string
	terms       []string
	linked      []primitive.ObjectID
	limit       int
}

// lexicalStrategy is one step of the fallback chain. Strategies run in a
// fixed order; a strategy only runs when every one before it returned
// nothing.
type lexicalStrategy interface {
	name() string
	attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error)
}

// newLexicalChain builds the ordered fallback chain: full-text search, regex
// alternation, linked-set intersection, any-single-term regex, then a random
// sample as the absolute last resort.
func newLexicalChain(verses repository.VerseRepository) []lexicalStrategy {
	return []lexicalStrategy{
		&textSearchStrategy{verses: verses},
		&regexAlternationStrategy{verses: verses},
		&linkedRegexStrategy{verses: verses},
		&anyTermStrategy{verses: verses},
		&randomSampleStrategy{verses: verses},
	}
}

type textSearchStrategy struct {
	verses repository.VerseRepository
}

func (s *textSearchStrategy) name() string { return "text_search" }

func (s *textSearchStrategy) attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error) {
	if len(q.terms) == 0 {
		return nil, nil
	}
	return s.verses.TextSearch(ctx, q.translation, q.terms, q.limit)
}

type regexAlternationStrategy struct {
	verses repository.VerseRepository
}

func (s *regexAlternationStrategy) name() string { return "regex_alternation" }

func (s *regexAlternationStrategy) attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error) {
	pattern := alternationPattern(q.terms)
	if pattern == "" {
		return nil, nil
	}
	return s.verses.SearchByContentPattern(ctx, q.translation, pattern, q.limit)
}

type linkedRegexStrategy struct {
	verses repository.VerseRepository
}

func (s *linkedRegexStrategy) name() string { return "linked_regex" }

func (s *linkedRegexStrategy) attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error) {
	pattern := alternationPattern(q.terms)
	if pattern == "" || len(q.linked) == 0 {
		return nil, nil
	}
	return s.verses.SearchLinkedByContentPattern(ctx, q.translation, q.linked, pattern, q.limit)
}

type anyTermStrategy struct {
	verses repository.VerseRepository
}

func (s *anyTermStrategy) name() string { return "any_term" }

func (s *anyTermStrategy) attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error) {
	pattern := alternationPattern(splitTermWords(q.terms))
	if pattern == "" {
		return nil, nil
	}
	return s.verses.SearchByContentPattern(ctx, q.translation, pattern, q.limit)
}

type randomSampleStrategy struct {
	verses repository.VerseRepository
}

func (s *randomSampleStrategy) name() string { return "random_sample" }

func (s *randomSampleStrategy) attempt(ctx context.Context, q lexicalQuery) ([]models.Verse, error) {
	verse, err := s.verses.SampleRandom(ctx, q.translation)
	if err != nil {
		return nil, err
	}
	if verse == nil {
		return nil, nil
	}
	return []models.Verse{*verse}, nil
}

// alternationPattern builds a case-insensitive-ready OR pattern from terms,
// escaping regex metacharacters
func alternationPattern(terms []string) string {
	escaped := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(t))
	}
	return strings.Join(escaped, "|")
}

// splitTermWords breaks multi-word terms into individual words so the
// flexible strategy can match any single one of them
func splitTermWords(terms []string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, t := range terms {
		for _, w := range strings.Fields(t) {
			lw := strings.ToLower(w)
			if !seen[lw] {
				seen[lw] = true
				words = append(words, w)
			}
		}
	}
	return words
}
