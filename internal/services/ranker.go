package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/parole-du-moment-api/internal/config"
	"github.com/parole-du-moment-api/internal/models"
)

// scoredCandidate is an immutable ranking value: the verse with the signals
// that feed the combined score, computed once at construction and never
// mutated afterwards.
type scoredCandidate struct {
	verse          models.Verse
	similarity     float64
	linked         bool
	keywordOverlap float64
	combined       float64
}

// newScoredCandidate computes the semantic and combined scores for one
// vector-stage candidate. The semantic score blends graph-link membership
// with the fraction of analysis keywords present in the content; the
// combined score blends vector similarity with the semantic score.
func newScoredCandidate(verse models.Verse, similarity float64, linked bool, keywords []string, cfg config.RetrieverConfig) scoredCandidate {
	overlap := keywordOverlap(verse.Content, keywords)

	var membership float64
	if linked {
		membership = 1.0
	}
	semantic := cfg.LinkWeight*membership + cfg.KeywordWeight*overlap

	return scoredCandidate{
		verse:          verse,
		similarity:     similarity,
		linked:         linked,
		keywordOverlap: overlap,
		combined:       cfg.VectorWeight*similarity + cfg.SemanticWeight*semantic,
	}
}

// rankCandidates orders candidates by descending combined score. The sort is
// stable over the input's vector-similarity order, so ties keep the more
// similar candidate first.
func rankCandidates(candidates []scoredCandidate) []scoredCandidate {
	ranked := make([]scoredCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].combined > ranked[j].combined
	})
	return ranked
}

// keywordOverlap returns the fraction of keywords found as case-insensitive
// substrings of the content, clamped to 1.0
func keywordOverlap(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	var found int
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			found++
		}
	}

	ratio := float64(found) / float64(len(keywords))
	if ratio > 1.0 {
		ratio = 1.0
	}
	return ratio
}

func normalizeTerms(terms []string) []string {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		normalized = append(normalized, strings.ToLower(t))
	}
	return normalized
}

// boundaryCount counts the occurrences of term in content that are not
// embedded in a longer word. Word characters are Unicode letters and digits,
// so accented terms do not match inside their inflections.
func boundaryCount(content, term string) int {
	var count int
	for start := 0; ; {
		i := strings.Index(content[start:], term)
		if i < 0 {
			return count
		}
		i += start
		if !wordRuneBefore(content, i) && !wordRuneAt(content, i+len(term)) {
			count++
		}
		start = i + len(term)
	}
}

func wordRuneBefore(s string, i int) bool {
	r, size := utf8.DecodeLastRuneInString(s[:i])
	return size > 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func wordRuneAt(s string, i int) bool {
	r, size := utf8.DecodeRuneInString(s[i:])
	return size > 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// selectByHeuristic picks the best lexical candidate: term occurrences on
// word boundaries score highest, bare substring occurrences less, terms
// related to the verse's stored keywords most, with a bonus for short verses
// and a penalty for long ones. The first verse with the highest score wins.
func selectByHeuristic(verses []models.Verse, terms []string, cfg config.RetrieverConfig) *models.Verse {
	if len(verses) == 0 {
		return nil
	}

	normalized := normalizeTerms(terms)

	best := &verses[0]
	bestScore := heuristicScore(verses[0], normalized, cfg)
	for i := 1; i < len(verses); i++ {
		if score := heuristicScore(verses[i], normalized, cfg); score > bestScore {
			best = &verses[i]
			bestScore = score
		}
	}
	return best
}

func heuristicScore(verse models.Verse, terms []string, cfg config.RetrieverConfig) int {
	lowerContent := strings.ToLower(verse.Content)
	lowerKeywords := make([]string, len(verse.Keywords))
	for i, kw := range verse.Keywords {
		lowerKeywords[i] = strings.ToLower(kw)
	}

	var score int
	for _, term := range terms {
		boundaryHits := boundaryCount(lowerContent, term)
		substringHits := strings.Count(lowerContent, term)

		score += cfg.WordBoundaryPoints * boundaryHits
		if extra := substringHits - boundaryHits; extra > 0 {
			score += cfg.SubstringPoints * extra
		}

		for _, kw := range lowerKeywords {
			if kw == "" {
				continue
			}
			if strings.Contains(kw, term) || strings.Contains(term, kw) {
				score += cfg.KeywordAffinityPoints
				break
			}
		}
	}

	length := utf8.RuneCountInString(verse.Content)
	if length < cfg.ShortContentLimit {
		score++
	}
	if length > cfg.LongContentLimit {
		score--
	}
	return score
}
