package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/parole-du-moment-api/internal/config"
	"github.com/parole-du-moment-api/internal/models"
	"github.com/parole-du-moment-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkResolver maps free-form emotion and theme names onto taxonomy entries,
// then onto the verses linked to those entries, ranked by summed association
// weight.
type LinkResolver struct {
	emotions     repository.TaxonomyRepository
	themes       repository.TaxonomyRepository
	emotionLinks repository.LinkRepository
	themeLinks   repository.LinkRepository
	cfg          config.RetrieverConfig

	// Taxonomy entries are read-only corpus data; loaded once and kept for
	// the process lifetime. A failed load is retried on the next call so a
	// transient startup timeout does not pin the caches empty.
	cacheMu      sync.Mutex
	cachesLoaded bool
	emotionCache []models.TaxonomyEntry
	themeCache   []models.TaxonomyEntry
}

// NewLinkResolver creates a new link resolver
func NewLinkResolver(
	emotions, themes repository.TaxonomyRepository,
	emotionLinks, themeLinks repository.LinkRepository,
	cfg config.RetrieverConfig,
) *LinkResolver {
	return &LinkResolver{
		emotions:     emotions,
		themes:       themes,
		emotionLinks: emotionLinks,
		themeLinks:   themeLinks,
		cfg:          cfg,
	}
}

// ResolveLinkedVerses returns the verses associated with the analysis'
// emotions and themes, ordered by descending summed link weight. An analysis
// without emotions or themes yields an empty set and no error.
func (r *LinkResolver) ResolveLinkedVerses(ctx context.Context, analysis models.AnalysisResult) ([]models.LinkedVerse, error) {
	if len(analysis.Emotions) == 0 && len(analysis.Themes) == 0 {
		return []models.LinkedVerse{}, nil
	}

	emotionCache, themeCache := r.taxonomyCaches(ctx)

	combined := make(map[primitive.ObjectID]float64)
	order := make([]primitive.ObjectID, 0)

	if len(analysis.Emotions) > 0 {
		entryIDs := r.matchEntryIDs(ctx, analysis.Emotions, emotionCache, r.emotions)
		linked, err := r.emotionLinks.SumWeightsByVerse(ctx, entryIDs, r.cfg.LinkedVerseLimit)
		if err != nil {
			return nil, err
		}
		mergeLinked(combined, &order, linked)
	}

	if len(analysis.Themes) > 0 {
		entryIDs := r.matchEntryIDs(ctx, analysis.Themes, themeCache, r.themes)
		linked, err := r.themeLinks.SumWeightsByVerse(ctx, entryIDs, r.cfg.LinkedVerseLimit)
		if err != nil {
			return nil, err
		}
		mergeLinked(combined, &order, linked)
	}

	merged := make([]models.LinkedVerse, 0, len(order))
	for _, id := range order {
		merged = append(merged, models.LinkedVerse{VerseID: id, Weight: combined[id]})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Weight > merged[j].Weight
	})

	if len(merged) > r.cfg.LinkedVerseLimit {
		merged = merged[:r.cfg.LinkedVerseLimit]
	}
	return merged, nil
}

// taxonomyCaches returns the cached taxonomy entries, loading them on first
// use. The caches latch only on a fully successful load; until then every
// call retries and matching runs against whatever was cached so far.
func (r *LinkResolver) taxonomyCaches(ctx context.Context) ([]models.TaxonomyEntry, []models.TaxonomyEntry) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.cachesLoaded {
		return r.emotionCache, r.themeCache
	}

	emotions, err := r.emotions.ListAll(ctx)
	if err != nil {
		log.Printf("taxonomy cache: loading emotions failed: %v", err)
		return r.emotionCache, r.themeCache
	}
	themes, err := r.themes.ListAll(ctx)
	if err != nil {
		log.Printf("taxonomy cache: loading themes failed: %v", err)
		return r.emotionCache, r.themeCache
	}

	r.emotionCache = emotions
	r.themeCache = themes
	r.cachesLoaded = true
	return r.emotionCache, r.themeCache
}

// matchEntryIDs resolves each queried name into at most FuzzyMatchLimit
// taxonomy entry ids via fuzzy matching over the cache, falling back to a
// database-level name search when fuzzy matching finds nothing.
func (r *LinkResolver) matchEntryIDs(ctx context.Context, names []string, cache []models.TaxonomyEntry, repo repository.TaxonomyRepository) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}

		matches := matchEntries(name, cache, r.cfg.FuzzyThreshold, r.cfg.FuzzyMatchLimit)
		if len(matches) == 0 {
			found, err := repo.SearchByName(ctx, name, r.cfg.FuzzyMatchLimit)
			if err != nil {
				log.Printf("taxonomy search for %q failed: %v", name, err)
				continue
			}
			matches = found
		}

		for _, entry := range matches {
			if !seen[entry.ID] {
				seen[entry.ID] = true
				ids = append(ids, entry.ID)
			}
		}
	}
	return ids
}

// matchEntries scores every cached entry against the queried name and returns
// the best matches at or above the threshold, capped at limit.
func matchEntries(name string, entries []models.TaxonomyEntry, threshold float64, limit int) []models.TaxonomyEntry {
	type scoredEntry struct {
		entry models.TaxonomyEntry
		score float64
	}

	var scored []scoredEntry
	for _, entry := range entries {
		score := nameSimilarity(name, entry.Name)
		if score >= threshold {
			scored = append(scored, scoredEntry{entry: entry, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	matches := make([]models.TaxonomyEntry, len(scored))
	for i, s := range scored {
		matches[i] = s.entry
	}
	return matches
}

// nameSimilarity scores how well a queried name matches a taxonomy entry
// name: 1.0 for case-insensitive equality, 0.8 when the query is contained
// in the candidate, 0.7 for the reverse, otherwise a word-overlap ratio
// capped at 0.6.
func nameSimilarity(query, candidate string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1.0
	}
	if strings.Contains(c, q) {
		return 0.8
	}
	if strings.Contains(q, c) {
		return 0.7
	}

	qWords := significantWords(q)
	cWords := significantWords(c)
	if len(qWords) == 0 || len(cWords) == 0 {
		return 0
	}

	inCandidate := make(map[string]bool, len(cWords))
	for _, w := range cWords {
		inCandidate[w] = true
	}
	union := make(map[string]bool, len(qWords)+len(cWords))
	for _, w := range qWords {
		union[w] = true
	}
	for _, w := range cWords {
		union[w] = true
	}

	var common int
	counted := make(map[string]bool)
	for _, w := range qWords {
		if inCandidate[w] && !counted[w] {
			counted[w] = true
			common++
		}
	}
	return 0.6 * float64(common) / float64(len(union))
}

// significantWords splits a name into words longer than two runes
func significantWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == ',' || r == '\'' || r == '’'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			words = append(words, f)
		}
	}
	return words
}

func mergeLinked(combined map[primitive.ObjectID]float64, order *[]primitive.ObjectID, linked []models.LinkedVerse) {
	for _, lv := range linked {
		if _, ok := combined[lv.VerseID]; !ok {
			*order = append(*order, lv.VerseID)
		}
		combined[lv.VerseID] += lv.Weight
	}
}
