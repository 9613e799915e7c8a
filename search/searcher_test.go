package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/shoplore/ai/mock"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcher(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		searcher, err := NewSearcher(docRepo, provider, WithLogger(logger))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(docRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestFindSimilar_EmptyDatabase(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()
	searcher, err := NewSearcher(docRepo, provider)
	require.NoError(t, err)

	ctx := context.Background()
	results, err := searcher.FindSimilar(ctx, "крем для сухой кожи", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_RanksBySimilarity(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	documents := []*core.Document{
		{
			Slug:     "product_reviderm_hydration_booster",
			Kind:     core.DocKindProduct,
			Title:    "Увлажняющая сыворотка",
			Contents: "passage: Увлажняющая сыворотка с гиалуроновой кислотой",
			Vector:   []float32{0.9, 0.1, 0.0},
		},
		{
			Slug:     "product_reviderm_thermal_tonic",
			Kind:     core.DocKindProduct,
			Title:    "Термальный тоник",
			Contents: "passage: Термальный тоник для чувствительной кожи",
			Vector:   []float32{0.7, 0.3, 0.0},
		},
		{
			Slug:     "guide_couperose_care",
			Kind:     core.DocKindGuide,
			Title:    "Уход при куперозе",
			Contents: "passage: Протокол ухода при куперозе",
			Vector:   []float32{0.1, 0.1, 0.8},
		},
	}

	added, err := docRepo.AddDocuments(ctx, documents...)
	require.NoError(t, err)
	require.Len(t, added, 3)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	mockProvider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	searcher, err := NewSearcher(docRepo, mockProvider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "увлажнение", 10)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "product_reviderm_hydration_booster", results[0].Document.Slug)
	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Same vector, different text: only one contains every query word
	documents := []*core.Document{
		{
			Slug:     "product_verbatim",
			Kind:     core.DocKindProduct,
			Title:    "Крем",
			Contents: "Увлажняющий крем для сухой кожи лица",
			Vector:   []float32{0.9, 0.1, 0.0},
		},
		{
			Slug:     "product_other",
			Kind:     core.DocKindProduct,
			Title:    "Тоник",
			Contents: "Тоник для жирной и комбинированной кожи",
			Vector:   []float32{0.9, 0.1, 0.0},
		},
	}

	added, err := docRepo.AddDocuments(ctx, documents...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	mockProvider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	searcher, err := NewSearcher(docRepo, mockProvider)
	require.NoError(t, err)

	// "для" is a stop word; "крем", "сухой", "кожи" must all appear
	results, err := searcher.FindSimilar(ctx, "крем для сухой кожи", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "product_verbatim", results[0].Document.Slug)
	assert.InDelta(t, 0.3, results[0].Score-results[1].Score, 0.0001)
}

func TestFindSimilar_HeadroomPromotesVerbatim(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// The exact-match document has slightly lower similarity; the boost
	// must still lift it past the closer one even with maxHits=1.
	documents := []*core.Document{
		{
			Slug:     "product_closer",
			Kind:     core.DocKindProduct,
			Title:    "Сыворотка",
			Contents: "Сыворотка с витамином C",
			Vector:   []float32{0.95, 0.05, 0.0},
		},
		{
			Slug:     "product_exact",
			Kind:     core.DocKindProduct,
			Title:    "Молочко",
			Contents: "Очищающее молочко для снятия макияжа",
			Vector:   []float32{0.90, 0.10, 0.0},
		},
	}

	added, err := docRepo.AddDocuments(ctx, documents...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1.0, 0.0, 0.0}, nil
	}
	mockProvider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	searcher, err := NewSearcher(docRepo, mockProvider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "очищающее молочко", 1)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "product_exact", results[0].Document.Slug)
}

func TestFindSimilar_WithMaxHits(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	documents := make([]*core.Document, 10)
	for i := 0; i < 10; i++ {
		documents[i] = &core.Document{
			Slug:     "product_" + string(rune('a'+i)),
			Kind:     core.DocKindProduct,
			Title:    "Продукт",
			Contents: "Описание продукта",
			Vector:   []float32{0.9, 0.1, 0.0},
		}
	}

	_, err = docRepo.AddDocuments(ctx, documents...)
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	mockProvider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	searcher, err := NewSearcher(docRepo, mockProvider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "продукт", 5)
	require.NoError(t, err)

	// Should limit to 5 results
	assert.Len(t, results, 5)
}

func TestFindSimilarWithMonitor(t *testing.T) {
	docRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		dialogRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	documents := []*core.Document{
		{
			Slug:     "product_monitored",
			Kind:     core.DocKindProduct,
			Title:    "Крем",
			Contents: "Ночной крем",
			Vector:   []float32{0.9, 0.1, 0.0},
		},
	}

	_, err = docRepo.AddDocuments(ctx, documents...)
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	mockProvider := mock.NewMockProviderWithServices(
		mockEmbedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	searcher, err := NewSearcher(docRepo, mockProvider)
	require.NoError(t, err)

	monitor := &testMonitor{}

	results, err := searcher.FindSimilarWithMonitor(ctx, "ночной крем", 10, monitor)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	assert.True(t, monitor.startCalled)
	assert.Len(t, monitor.embedding, 3)
	assert.Len(t, monitor.matches, 1)
	assert.Len(t, monitor.retrieved, 1)
	assert.Equal(t, 1, monitor.verbatimHits)
	assert.True(t, monitor.finishCalled)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	startCalled  bool
	embedding    []float32
	matches      []core.SimilarityMatch
	retrieved    []*core.Document
	verbatimHits int
	finishCalled bool
}

func (m *testMonitor) Start(query string) {
	m.startCalled = true
}

func (m *testMonitor) AfterEmbedding(vector []float32) {
	m.embedding = vector
}

func (m *testMonitor) AfterVectorSearch(matches []core.SimilarityMatch) {
	m.matches = matches
}

func (m *testMonitor) AfterDocumentRetrieval(documents []*core.Document) {
	m.retrieved = documents
}

func (m *testMonitor) VerbatimHit(document *core.Document) {
	m.verbatimHits++
}

func (m *testMonitor) Finish(results []*core.SearchResult) {
	m.finishCalled = true
}

func TestTokenizeAndFilter(t *testing.T) {
	t.Run("russian stop words removed", func(t *testing.T) {
		tokens := tokenizeAndFilter("крем для сухой кожи")
		assert.Equal(t, []string{"крем", "сухой", "кожи"}, tokens)
	})

	t.Run("punctuation trimmed", func(t *testing.T) {
		tokens := tokenizeAndFilter("«Тоник», (спрей)!")
		assert.Equal(t, []string{"тоник", "спрей"}, tokens)
	})

	t.Run("only stop words", func(t *testing.T) {
		tokens := tokenizeAndFilter("и в на")
		assert.Empty(t, tokens)
	})
}

func TestContainsAllQueryWords(t *testing.T) {
	assert.True(t, containsAllQueryWords("Увлажняющий крем для сухой кожи лица", "крем для сухой кожи"))
	assert.False(t, containsAllQueryWords("Тоник для жирной кожи", "крем для сухой кожи"))
	// Query of nothing but stop words never matches
	assert.False(t, containsAllQueryWords("любой текст", "и в на"))
	// Token match is exact, not stemmed
	assert.False(t, containsAllQueryWords("кремовая текстура", "крем"))
}
