package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/parole-du-moment-api/internal/config"
	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	pkgservices "github.com/parole-du-moment-api/pkg/schema/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoVerseFound is returned when every retrieval strategy came up empty.
// This is a normal outcome for an empty translation, not a failure.
var ErrNoVerseFound = errors.New("no verse found")

// ErrEmptyQuery is returned when the query text is blank
var ErrEmptyQuery = errors.New("query text is empty")

// RetrieverService selects the single best verse for a query. It runs the
// vector stage first, fuses its candidates with graph-link and keyword
// signals, and falls back to the lexical strategy chain when the vector
// stage yields nothing.
type RetrieverService struct {
	verses          repository.VerseRepository
	links           *LinkResolver
	embeddings      *pkgservices.EmbeddingsService
	vectorAvailable bool
	chain           []lexicalStrategy
	cfg             config.RetrieverConfig
}

// NewRetrieverService creates a new retriever service. vectorAvailable
// reflects whether the embedding backend initialized; when false the engine
// runs lexical-only for the process lifetime.
func NewRetrieverService(
	verses repository.VerseRepository,
	links *LinkResolver,
	embeddings *pkgservices.EmbeddingsService,
	vectorAvailable bool,
	cfg config.RetrieverConfig,
) *RetrieverService {
	return &RetrieverService{
		verses:          verses,
		links:           links,
		embeddings:      embeddings,
		vectorAvailable: vectorAvailable,
		chain:           newLexicalChain(verses),
		cfg:             cfg,
	}
}

// FindBestVerse returns the most relevant verse of a translation for the
// query text and its analysis, or ErrNoVerseFound when the translation has
// no matching verse at all.
func (s *RetrieverService) FindBestVerse(ctx context.Context, text string, analysis models.AnalysisResult, translation string) (*models.VerseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	linked := s.resolveLinks(ctx, analysis)

	if s.vectorAvailable {
		if result := s.vectorStage(ctx, text, analysis, translation, linked); result != nil {
			return result, nil
		}
	}

	terms := buildSearchTerms(analysis)
	verses := s.runLexicalChain(ctx, lexicalQuery{
		translation: translation,
		terms:       terms,
		linked:      linkedIDs(linked),
		limit:       s.cfg.LexicalLimit,
	})
	if len(verses) == 0 {
		return nil, ErrNoVerseFound
	}

	best := selectByHeuristic(verses, terms, s.cfg)
	return verseResult(best), nil
}

// resolveLinks computes the graph-linked verse set; a failing or timing-out
// link stage degrades to an empty set.
func (s *RetrieverService) resolveLinks(ctx context.Context, analysis models.AnalysisResult) []models.LinkedVerse {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()

	linked, err := s.links.ResolveLinkedVerses(stageCtx, analysis)
	if err != nil {
		log.Printf("link resolution unavailable: %v", err)
		return nil
	}
	return linked
}

// vectorStage embeds the query once, scans the translation's embedded verses
// for the top-K most similar, and fuses vector similarity with graph and
// keyword signals. Returns nil when the stage is unavailable or empty.
func (s *RetrieverService) vectorStage(ctx context.Context, text string, analysis models.AnalysisResult, translation string, linked []models.LinkedVerse) *models.VerseResult {
	embedCtx, cancelEmbed := s.stageContext(ctx)
	defer cancelEmbed()
	queryVec, err := s.embeddings.EmbedQuery(embedCtx, text)
	if err != nil {
		log.Printf("vector stage: query embedding failed: %v", err)
		return nil
	}

	fetchCtx, cancelFetch := s.stageContext(ctx)
	defer cancelFetch()
	embedded, err := s.verses.FindEmbedded(fetchCtx, translation)
	if err != nil {
		log.Printf("vector stage: fetching embedded verses failed: %v", err)
		return nil
	}
	if len(embedded) == 0 {
		return nil
	}

	vectors := make([][]float64, len(embedded))
	for i := range embedded {
		vectors[i] = embedded[i].Embedding
	}
	top := pkgservices.TopK(queryVec, vectors, s.cfg.VectorTopK)
	if len(top) == 0 {
		return nil
	}

	linkedSet := make(map[primitive.ObjectID]bool, len(linked))
	for _, lv := range linked {
		linkedSet[lv.VerseID] = true
	}

	candidates := make([]scoredCandidate, len(top))
	for i, scored := range top {
		verse := embedded[scored.Index]
		candidates[i] = newScoredCandidate(verse, scored.Score, linkedSet[verse.ID], analysis.Keywords, s.cfg)
	}

	ranked := rankCandidates(candidates)
	return verseResult(&ranked[0].verse)
}

// runLexicalChain tries each strategy in order until one returns candidates.
// A failing or timing-out strategy counts as empty and the chain continues.
func (s *RetrieverService) runLexicalChain(ctx context.Context, q lexicalQuery) []models.Verse {
	for _, strategy := range s.chain {
		stageCtx, cancel := s.stageContext(ctx)
		verses, err := strategy.attempt(stageCtx, q)
		cancel()
		if err != nil {
			log.Printf("lexical strategy %s unavailable: %v", strategy.name(), err)
			continue
		}
		if len(verses) > 0 {
			return verses
		}
	}
	return nil
}

func (s *RetrieverService) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StageTimeout)
}

// buildSearchTerms combines analysis keywords, emotions and themes into a
// deduplicated term list, preserving first-seen order
func buildSearchTerms(analysis models.AnalysisResult) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, group := range [][]string{analysis.Keywords, analysis.Emotions, analysis.Themes} {
		for _, term := range group {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			key := strings.ToLower(term)
			if !seen[key] {
				seen[key] = true
				terms = append(terms, term)
			}
		}
	}
	return terms
}

func linkedIDs(linked []models.LinkedVerse) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(linked))
	for i, lv := range linked {
		ids[i] = lv.VerseID
	}
	return ids
}

func verseResult(verse *models.Verse) *models.VerseResult {
	if verse == nil {
		return nil
	}
	return &models.VerseResult{
		Content:     verse.Content,
		Reference:   verse.Reference,
		Keywords:    verse.Keywords,
		Translation: verse.Translation,
		Book:        verse.Book,
		Chapter:     verse.Chapter,
		Verse:       verse.Number,
	}
}
