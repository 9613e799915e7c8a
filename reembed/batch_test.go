package reembed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder returns un-normalized vectors so the normalization
// step in Process has something to do.
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          atomic.Int64
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 2, 2} // magnitude 3
	}
	return vectors, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	docs := seedDocuments(t, repo, 2)

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, docs)
	require.NoError(t, err)

	for _, doc := range docs {
		stored, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.Len(t, stored.Vector, 3)

		var magnitude float64
		for _, v := range stored.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "stored vector should be normalized")
		assert.InDelta(t, 1.0/3.0, stored.Vector[0], 0.01)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupTestDB(t)

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := processor.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, embedder.calls.Load(), "embedder should not be called for an empty batch")
}

func TestBatchProcessor_EmbeddingErrorAfterRetries(t *testing.T) {
	repo := setupTestDB(t)
	docs := seedDocuments(t, repo, 2)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, assert.AnError
		},
	}
	processor := NewBatchProcessor(repo, embedder, 2, 5*time.Millisecond)

	err := processor.Process(context.Background(), docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embeddings after 2 attempts")
	assert.Equal(t, int64(2), embedder.calls.Load())
}

func TestBatchProcessor_RetrySucceeds(t *testing.T) {
	repo := setupTestDB(t)
	docs := seedDocuments(t, repo, 1)

	var attempts int
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts == 1 {
				return nil, assert.AnError
			}
			return [][]float32{{1, 2, 2}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 5*time.Millisecond)

	err := processor.Process(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestDB(t)
	docs := seedDocuments(t, repo, 2)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0, 0}}, nil // one vector for two texts
		},
	}
	processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)

	err := processor.Process(context.Background(), docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch: expected 2, got 1")
}
