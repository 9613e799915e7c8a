package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
	"github.com/poiesic/shoplore/storage/badger"
)

func setupTestDB(t *testing.T) storage.DocumentRepository {
	t.Helper()

	backend, err := badger.OpenBackend("", true) // in-memory
	require.NoError(t, err)

	repo, err := badger.NewDocumentRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func seedDocuments(t *testing.T, repo storage.DocumentRepository, n int) []*core.Document {
	t.Helper()

	docs := make([]*core.Document, n)
	for i := range docs {
		docs[i] = &core.Document{
			Slug:     fmt.Sprintf("product_%03d", i),
			Kind:     core.DocKindProduct,
			Title:    fmt.Sprintf("Продукт %d", i),
			Contents: fmt.Sprintf("passage: описание продукта %d", i),
		}
	}
	added, err := repo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestDocumentIterator_Basic(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedDocuments(t, repo, 3)

	iter := NewDocumentIterator(repo, 2)
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, func(docs []*core.Document) error {
		count += len(docs)
		for _, doc := range docs {
			ids = append(ids, doc.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 documents")
	assert.Len(t, ids, 3)
}

func TestDocumentIterator_BatchSizes(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedDocuments(t, repo, 10)

	tests := []struct {
		name            string
		batchSize       int
		expectedBatches int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4}, // 3+3+3+1
		{"batch size 5", 5, 2}, // 5+5
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1}, // All in one batch
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewDocumentIterator(repo, tt.batchSize)
			batches := 0
			total := 0

			err := iter.ForEach(ctx, func(docs []*core.Document) error {
				batches++
				total += len(docs)
				assert.LessOrEqual(t, len(docs), tt.batchSize)
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatches, batches)
			assert.Equal(t, 10, total)
		})
	}
}

func TestDocumentIterator_Empty(t *testing.T) {
	repo := setupTestDB(t)

	iter := NewDocumentIterator(repo, 10)
	called := false

	err := iter.ForEach(context.Background(), func(docs []*core.Document) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not run for an empty database")
}

func TestDocumentIterator_ErrorStopsIteration(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedDocuments(t, repo, 10)

	iter := NewDocumentIterator(repo, 3)
	batches := 0

	err := iter.ForEach(ctx, func(docs []*core.Document) error {
		batches++
		return assert.AnError
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, batches, "iteration should stop on the first error")
}

func TestDocumentIterator_ContextCancellation(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	iter := NewDocumentIterator(repo, 3)
	batches := 0

	err := iter.ForEach(ctx, func(docs []*core.Document) error {
		batches++
		cancel()
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, batches, "no further batches after cancellation")
}

func TestDocumentIterator_DefaultBatchSize(t *testing.T) {
	repo := setupTestDB(t)

	iter := NewDocumentIterator(repo, 0)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)

	iter = NewDocumentIterator(repo, -5)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)
}
