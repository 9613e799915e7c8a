package ingestion

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/shoplore/ai/mock"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
	"github.com/poiesic/shoplore/storage/badger"
)

func setupTestRepository(t *testing.T) storage.DocumentRepository {
	t.Helper()

	documentRepo, dialogRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		dialogRepo.Close()
		documentRepo.Close()
		backend.Close()
	})
	return documentRepo
}

func testDocument(slug, contents string) *core.Document {
	return &core.Document{
		Slug:     slug,
		Kind:     core.DocKindProduct,
		Title:    slug,
		Contents: contents,
	}
}

func TestNewPipeline(t *testing.T) {
	repo := setupTestRepository(t)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(repo, mock.NewMockProvider())
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, defaultBatchSize, p.batchSize)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockProvider())
		assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("pool size clamped to one", func(t *testing.T) {
		p, err := NewPipeline(repo, mock.NewMockProvider(), WithPoolSize(0))
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, 1, p.pool.Cap())
	})

	t.Run("batch size clamped to one", func(t *testing.T) {
		p, err := NewPipeline(repo, mock.NewMockProvider(), WithBatchSize(-5))
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, 1, p.batchSize)
	})
}

func TestIngest(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	p, err := NewPipeline(repo, mock.NewMockProvider(), WithPoolSize(2), WithBatchSize(2))
	require.NoError(t, err)
	defer p.Release()

	docs := []*core.Document{
		testDocument("product_reviderm_cream", "passage: Увлажняющий крем"),
		testDocument("product_reviderm_tonic", "passage: Тоник для лица"),
		testDocument("guide_care_dry_skin", "passage: Уход за сухой кожей"),
	}
	docs[2].Kind = core.DocKindGuide

	require.NoError(t, p.Ingest(ctx, docs...))
	require.NoError(t, p.Wait())

	stored, err := repo.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, doc := range stored {
		assert.NotZero(t, doc.Id)
		assert.NotEmpty(t, doc.Vector, "document %s should be embedded", doc.Slug)
		assert.False(t, doc.InsertedAt.IsZero())
	}
}

func TestIngestValidation(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	err = p.Ingest(ctx, testDocument("", "passage: без слага"))
	require.Error(t, err)

	stored, err := repo.GetAllDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "invalid documents must not reach storage")
}

func TestIngestDuplicateSlug(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(ctx, testDocument("product_a", "passage: первый")))
	require.NoError(t, p.Wait())

	err = p.Ingest(ctx, testDocument("product_a", "passage: второй"))
	assert.Error(t, err)
}

func TestIngestBatchSplitting(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		batches []int
	)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		mu.Lock()
		batches = append(batches, len(texts))
		mu.Unlock()

		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	p, err := NewPipeline(repo, provider, WithPoolSize(1), WithBatchSize(2))
	require.NoError(t, err)
	defer p.Release()

	docs := make([]*core.Document, 5)
	for i := range docs {
		docs[i] = testDocument("product_"+string(rune('a'+i)), "passage: документ")
	}

	require.NoError(t, p.Ingest(ctx, docs...))
	require.NoError(t, p.Wait())

	sort.Ints(batches)
	assert.Equal(t, []int{1, 2, 2}, batches)
}

func TestIngestEmbeddingFailure(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, assert.AnError
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockChatModel(), mock.NewMockCatalogExtractor())

	p, err := NewPipeline(repo, provider, WithBatchSize(2))
	require.NoError(t, err)
	defer p.Release()

	// The add succeeds; the failure belongs to the async embedding stage.
	require.NoError(t, p.Ingest(ctx, testDocument("product_a", "passage: текст")))

	err = p.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 0")

	// Errors are consumed by Wait.
	assert.NoError(t, p.Wait())

	// Documents stay stored without vectors.
	stored, err := repo.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].Vector)
}

func TestIngestEmptyBatch(t *testing.T) {
	repo := setupTestRepository(t)

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(context.Background()))
	require.NoError(t, p.Wait())
}
