package reembed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/ai/openai"
)

// TestIntegration_FullReembeddingWorkflow exercises the complete workflow
// from a database of unembedded documents through to normalized vectors.
func TestIntegration_FullReembeddingWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	repo := setupTestDB(t)

	added := seedDocuments(t, repo, 50)
	for _, doc := range added {
		assert.Empty(t, doc.Vector, "seeded documents should not have embeddings")
	}

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Distinct un-normalized vector per text
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{
					float32(i+1) * 0.1,
					float32(i+1) * 0.2,
					float32(i+1) * 0.3,
				}
			}
			return result, nil
		},
	}

	config := &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, config, &buf)

	err := reembedder.Run(ctx)
	require.NoError(t, err)

	docs, err := repo.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 50)

	for _, doc := range docs {
		require.NotEmpty(t, doc.Vector, "document %q should have an embedding", doc.Slug)
		assertUnitMagnitude(t, doc.Vector)
	}

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 50 documents")
	assert.Contains(t, output, "50/50")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "Reembedding complete")
}

// TestIntegration_WithRealEmbedder runs against a live OpenAI-compatible
// embedding service and is skipped by default.
func TestIntegration_WithRealEmbedder(t *testing.T) {
	t.Skip("Requires running embedding service - enable manually for testing")

	ctx := context.Background()
	repo := setupTestDB(t)
	added := seedDocuments(t, repo, 3)

	aiConfig := ai.NewConfig(
		ai.WithHost("http://localhost:11434/v1"),
		ai.WithEmbeddingModel("embeddinggemma"),
	)

	embedder, err := openai.NewEmbedder(aiConfig)
	require.NoError(t, err)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, DefaultConfig(), &buf)

	err = reembedder.Run(ctx)
	require.NoError(t, err)

	updated, err := repo.GetDocuments(ctx, added[0].Id, added[1].Id, added[2].Id)
	require.NoError(t, err)
	require.Len(t, updated, 3)

	dimension := len(updated[0].Vector)
	require.Greater(t, dimension, 0)
	for _, doc := range updated {
		assert.Len(t, doc.Vector, dimension, "real embeddings should share a dimension")
	}
}

// TestIntegration_IdempotentReembedding verifies that running the operation
// twice leaves the same vectors in place.
func TestIntegration_IdempotentReembedding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	repo := setupTestDB(t)
	added := seedDocuments(t, repo, 10)

	embedder := &mockEmbedder{}
	config := &Config{
		BatchSize:      5,
		ReportInterval: 5,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	var buf1 bytes.Buffer
	err := NewReembedder(repo, embedder, config, &buf1).Run(ctx)
	require.NoError(t, err)

	first, err := repo.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)
	require.NotEmpty(t, first.Vector)

	var buf2 bytes.Buffer
	err = NewReembedder(repo, embedder, config, &buf2).Run(ctx)
	require.NoError(t, err)

	second, err := repo.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)

	require.Equal(t, len(first.Vector), len(second.Vector))
	for i := range first.Vector {
		assert.InDelta(t, first.Vector[i], second.Vector[i], 0.001,
			"element %d should be unchanged on the second run", i)
	}
}
