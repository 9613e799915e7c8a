package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
)

// embeddingProcessor generates embeddings for stored documents.
type embeddingProcessor struct {
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(documentRepository storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if documentRepository == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		documentRepository: documentRepository,
		embedder:           embedder,
		logger:             logger.With("processor", "embeddings"),
	}, nil
}

// process generates and stores embeddings for the identified documents.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	slices.Sort(ids)

	docs, err := ep.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving documents", "err", err)
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Contents
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(docs), len(embeddings))
	}

	for i := range embeddings {
		docs[i].Vector = embeddings[i]
	}

	if _, err := ep.documentRepository.UpdateDocuments(ctx, docs...); err != nil {
		return err
	}

	return nil
}
