package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/parole-du-moment-api/internal/models"
	pkgservices "github.com/parole-du-moment-api/pkg/schema/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockVerseRepo struct {
	embedded      []models.Verse
	textResults   []models.Verse
	regexResults  []models.Verse
	linkedResults []models.Verse
	anyResults    []models.Verse
	sample        *models.Verse

	embeddedErr error
	textErr     error
	regexErr    error

	calls        []string
	patternCalls int
}

func (m *mockVerseRepo) FindEmbedded(ctx context.Context, translation string) ([]models.Verse, error) {
	m.calls = append(m.calls, "embedded")
	if m.embeddedErr != nil {
		return nil, m.embeddedErr
	}
	return m.embedded, nil
}

func (m *mockVerseRepo) TextSearch(ctx context.Context, translation string, terms []string, limit int) ([]models.Verse, error) {
	m.calls = append(m.calls, "text")
	if m.textErr != nil {
		return nil, m.textErr
	}
	return m.textResults, nil
}

func (m *mockVerseRepo) SearchByContentPattern(ctx context.Context, translation, pattern string, limit int) ([]models.Verse, error) {
	// The alternation strategy and the any-term strategy share this query;
	// the chain order guarantees the first call belongs to the alternation.
	m.patternCalls++
	if m.patternCalls > 1 {
		m.calls = append(m.calls, "any")
		return m.anyResults, nil
	}
	m.calls = append(m.calls, "regex")
	if m.regexErr != nil {
		return nil, m.regexErr
	}
	return m.regexResults, nil
}

func (m *mockVerseRepo) SearchLinkedByContentPattern(ctx context.Context, translation string, ids []primitive.ObjectID, pattern string, limit int) ([]models.Verse, error) {
	m.calls = append(m.calls, "linked")
	return m.linkedResults, nil
}

func (m *mockVerseRepo) SampleRandom(ctx context.Context, translation string) (*models.Verse, error) {
	m.calls = append(m.calls, "sample")
	return m.sample, nil
}

func (m *mockVerseRepo) FindMissingEmbeddings(ctx context.Context, translation string, limit int) ([]models.Verse, error) {
	return nil, nil
}

func (m *mockVerseRepo) DistinctTranslations(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockVerseRepo) UpdateEmbedding(ctx context.Context, id primitive.ObjectID, embedding []float64) error {
	return nil
}

// fixedEmbedder returns the same vector for every text
type fixedEmbedder struct {
	vector []float64
	err    error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType pkgservices.TaskType) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType pkgservices.TaskType) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func emptyLinkResolver() *LinkResolver {
	return NewLinkResolver(&mockTaxonomyRepo{}, &mockTaxonomyRepo{}, &mockLinkRepo{}, &mockLinkRepo{}, testRetrieverConfig())
}

func newTestRetriever(repo *mockVerseRepo, links *LinkResolver, embedder pkgservices.Embedder) *RetrieverService {
	vectorAvailable := embedder != nil
	var svc *pkgservices.EmbeddingsService
	if embedder != nil {
		svc = pkgservices.NewEmbeddingsService(embedder)
	}
	if links == nil {
		links = emptyLinkResolver()
	}
	return NewRetrieverService(repo, links, svc, vectorAvailable, testRetrieverConfig())
}

func TestFindBestVerseEmptyQuery(t *testing.T) {
	retriever := newTestRetriever(&mockVerseRepo{}, nil, nil)

	_, err := retriever.FindBestVerse(context.Background(), "   ", models.AnalysisResult{}, "lsg")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestFindBestVerseVectorStage(t *testing.T) {
	linkedID := primitive.NewObjectID()
	repo := &mockVerseRepo{embedded: []models.Verse{
		{ID: primitive.NewObjectID(), Reference: "jn.3.16.lsg", Translation: "lsg", Content: "Car Dieu a tant aimé le monde", Embedding: []float64{1, 0, 0}},
		{ID: linkedID, Reference: "ps.23.1.lsg", Translation: "lsg", Content: "L'Éternel est mon berger", Embedding: []float64{0.9, 0.4359, 0}},
	}}

	emotionEntry := models.TaxonomyEntry{ID: primitive.NewObjectID(), Name: "solitude"}
	links := NewLinkResolver(
		&mockTaxonomyRepo{entries: []models.TaxonomyEntry{emotionEntry}},
		&mockTaxonomyRepo{},
		&mockLinkRepo{linked: []models.LinkedVerse{{VerseID: linkedID, Weight: 5.0}}},
		&mockLinkRepo{},
		testRetrieverConfig(),
	)

	retriever := newTestRetriever(repo, links, &fixedEmbedder{vector: []float64{1, 0, 0}})

	// The first verse is more similar (cos 1.0 vs 0.9) but the second is
	// graph-linked: combined 0.7*0.9+0.3*0.6 = 0.81 > 0.7.
	result, err := retriever.FindBestVerse(context.Background(), "je me sens seul", models.AnalysisResult{Emotions: []string{"solitude"}}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "ps.23.1.lsg" {
		t.Errorf("expected graph-linked verse to win, got %s", result.Reference)
	}
	if result.Translation != "lsg" {
		t.Errorf("expected translation lsg, got %s", result.Translation)
	}
}

func TestFindBestVerseIdempotent(t *testing.T) {
	repo := &mockVerseRepo{embedded: []models.Verse{
		{ID: primitive.NewObjectID(), Reference: "ps.46.1.lsg", Content: "Dieu est pour nous un refuge", Embedding: []float64{1, 0}},
		{ID: primitive.NewObjectID(), Reference: "es.41.10.lsg", Content: "Ne crains rien, car je suis avec toi", Embedding: []float64{1, 0}},
	}}
	retriever := newTestRetriever(repo, nil, &fixedEmbedder{vector: []float64{1, 0}})

	analysis := models.AnalysisResult{Keywords: []string{"refuge"}}
	first, err := retriever.FindBestVerse(context.Background(), "j'ai peur", analysis, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := retriever.FindBestVerse(context.Background(), "j'ai peur", analysis, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different selections: %v vs %v", first, second)
	}
}

func TestFindBestVerseLexicalFallback(t *testing.T) {
	// No embeddings stored: the vector stage yields nothing, full-text is
	// unavailable, and the regex strategy produces three candidates.
	verses := []models.Verse{
		{Reference: "a", Content: "et il y eut un soir et il y eut un matin"},
		{Reference: "b", Content: "la paix de Dieu garde vos coeurs, paix et repos"},
		{Reference: "c", Content: "que le repos vous soit accordé"},
	}
	repo := &mockVerseRepo{
		textErr:      errors.New("text index unavailable"),
		regexResults: verses,
	}
	retriever := newTestRetriever(repo, nil, &fixedEmbedder{vector: []float64{1, 0}})

	result, err := retriever.FindBestVerse(context.Background(), "je cherche la paix", models.AnalysisResult{Keywords: []string{"paix", "repos"}}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "b" {
		t.Errorf("expected the verse with the most word-boundary matches, got %s", result.Reference)
	}

	wantCalls := []string{"embedded", "text", "regex"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("expected calls %v, got %v", wantCalls, repo.calls)
	}
}

func TestFindBestVerseFallbackMonotonicity(t *testing.T) {
	// Full-text succeeds: no later strategy may run.
	repo := &mockVerseRepo{
		textResults: []models.Verse{{Reference: "mt.11.28.lsg", Content: "Venez à moi"}},
	}
	retriever := newTestRetriever(repo, nil, nil)

	result, err := retriever.FindBestVerse(context.Background(), "fatigué", models.AnalysisResult{Keywords: []string{"repos"}}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "mt.11.28.lsg" {
		t.Errorf("unexpected selection %s", result.Reference)
	}

	for _, call := range repo.calls {
		if call == "regex" || call == "linked" || call == "any" || call == "sample" {
			t.Errorf("strategy %q ran although full-text search had results", call)
		}
	}
}

func TestFindBestVerseLinkedRegexStage(t *testing.T) {
	// Full-text and plain regex search are both down; the linked-set regex
	// intersection still produces the selection.
	repo := &mockVerseRepo{
		textErr:  errors.New("text index unavailable"),
		regexErr: errors.New("regex query failed"),
		linkedResults: []models.Verse{
			{Reference: "rm.8.28.lsg", Content: "Toutes choses concourent au bien de ceux qui aiment Dieu"},
		},
	}

	emotionEntry := models.TaxonomyEntry{ID: primitive.NewObjectID(), Name: "solitude"}
	links := NewLinkResolver(
		&mockTaxonomyRepo{entries: []models.TaxonomyEntry{emotionEntry}},
		&mockTaxonomyRepo{},
		&mockLinkRepo{linked: []models.LinkedVerse{{VerseID: primitive.NewObjectID(), Weight: 2.0}}},
		&mockLinkRepo{},
		testRetrieverConfig(),
	)
	retriever := newTestRetriever(repo, links, nil)

	result, err := retriever.FindBestVerse(context.Background(), "je me sens seul", models.AnalysisResult{Emotions: []string{"solitude"}}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "rm.8.28.lsg" {
		t.Errorf("expected the linked-set regex verse, got %s", result.Reference)
	}

	wantCalls := []string{"text", "regex", "linked"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("expected calls %v, got %v", wantCalls, repo.calls)
	}
}

func TestFindBestVerseAnyTermStage(t *testing.T) {
	// Full-text is down and the full-phrase regex matches nothing; with no
	// linked set, the single-word regex produces the selection.
	repo := &mockVerseRepo{
		textErr: errors.New("text index unavailable"),
		anyResults: []models.Verse{
			{Reference: "ps.4.9.lsg", Content: "Je me couche et je m'endors en paix"},
		},
	}
	retriever := newTestRetriever(repo, nil, nil)

	result, err := retriever.FindBestVerse(context.Background(), "je veux dormir tranquille", models.AnalysisResult{Keywords: []string{"paix durable"}}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "ps.4.9.lsg" {
		t.Errorf("expected the single-word regex verse, got %s", result.Reference)
	}

	wantCalls := []string{"text", "regex", "any"}
	if !reflect.DeepEqual(repo.calls, wantCalls) {
		t.Errorf("expected calls %v, got %v", wantCalls, repo.calls)
	}
}

func TestFindBestVerseRandomLastResort(t *testing.T) {
	sample := models.Verse{Reference: "gn.1.1.lsg", Content: "Au commencement"}
	repo := &mockVerseRepo{sample: &sample}
	retriever := newTestRetriever(repo, nil, nil)

	// No analysis at all: only the random sample can produce a verse.
	result, err := retriever.FindBestVerse(context.Background(), "bonjour", models.AnalysisResult{}, "lsg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "gn.1.1.lsg" {
		t.Errorf("expected the sampled verse, got %s", result.Reference)
	}
}

func TestFindBestVerseNotFound(t *testing.T) {
	repo := &mockVerseRepo{} // empty translation: every strategy comes up empty
	retriever := newTestRetriever(repo, nil, &fixedEmbedder{vector: []float64{1, 0}})

	_, err := retriever.FindBestVerse(context.Background(), "je me sens seul", models.AnalysisResult{Emotions: []string{"solitude"}}, "xyz")
	if !errors.Is(err, ErrNoVerseFound) {
		t.Errorf("expected ErrNoVerseFound, got %v", err)
	}
}

func TestFindBestVerseEmbedderFailureFallsThrough(t *testing.T) {
	sample := models.Verse{Reference: "ps.121.1.lsg", Content: "Je lève mes yeux vers les montagnes"}
	repo := &mockVerseRepo{sample: &sample}
	retriever := newTestRetriever(repo, nil, &fixedEmbedder{err: errors.New("model not loaded")})

	result, err := retriever.FindBestVerse(context.Background(), "aidez-moi", models.AnalysisResult{}, "lsg")
	if err != nil {
		t.Fatalf("embedding failure must not fail the request: %v", err)
	}
	if result.Reference != "ps.121.1.lsg" {
		t.Errorf("expected lexical fallback result, got %s", result.Reference)
	}
}

func TestBuildSearchTerms(t *testing.T) {
	terms := buildSearchTerms(models.AnalysisResult{
		Keywords: []string{"paix", "repos", ""},
		Emotions: []string{"Paix", "anxiété"},
		Themes:   []string{"repos", "confiance"},
	})

	want := []string{"paix", "repos", "anxiété", "confiance"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected %v, got %v", want, terms)
	}
}
