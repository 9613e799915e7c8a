package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/shoplore"
	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/catalog"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/ingestion"
)

var (
	jsonDir     = flag.String("json", "./catalog", "directory of catalog JSON files")
	dbPath      = flag.String("db", "./shop_db", "path to BadgerDB database directory")
	previewPath = flag.String("preview", "chunks_preview.txt", "where to write the document preview")
	previewOnly = flag.Bool("preview-only", false, "write the preview and exit without touching the database")
	host        = flag.String("host", "http://localhost:11434/v1", "embedding service host URL")
	model       = flag.String("model", "multilingual-e5-base", "embedding model name")
	token       = flag.String("token", "", "API key for the embedding service")
	batchSize   = flag.Int("batch", 32, "documents per embedding batch")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// writePreview renders the first documents of each kind to a file so the
// extraction can be sanity-checked before it replaces the database.
func writePreview(path string, docs []*core.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := catalog.WritePreview(f, docs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	ctx := context.Background()

	files, err := catalog.LoadDir(*jsonDir)
	if err != nil {
		panic(err)
	}
	if len(files) == 0 {
		slog.Error("no catalog files found", "dir", *jsonDir)
		os.Exit(1)
	}

	docs, stats := catalog.BuildDocuments(files)
	if len(docs) == 0 {
		slog.Error("catalog files contain no products or knowledge", "dir", *jsonDir)
		os.Exit(1)
	}
	slog.Info("documents built",
		"files", stats.Files,
		"products", stats.Products,
		"guides", stats.Guides)

	if err := writePreview(*previewPath, docs); err != nil {
		panic(err)
	}
	slog.Info("preview written", "path", *previewPath)

	if *previewOnly {
		return
	}

	db, err := shoplore.NewDatabase(*dbPath, shoplore.WithAIConfig(ai.NewConfig(
		ai.WithEmbeddingHost(*host),
		ai.WithEmbeddingModel(*model),
		ai.WithToken(*token),
	)))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithBatchSize(*batchSize))
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	// Reseeding replaces the whole knowledge base
	if err := db.DocumentRepository().PurgeDocuments(ctx); err != nil {
		panic(err)
	}

	started := time.Now()
	if err := pipeline.Ingest(ctx, docs...); err != nil {
		panic(err)
	}
	if err := pipeline.Wait(); err != nil {
		panic(err)
	}

	manifest := &core.Manifest{
		EmbeddingModel: *model,
		Documents:      len(docs),
		Products:       stats.Products,
		Guides:         stats.Guides,
		IngestedAt:     time.Now().UTC(),
	}
	if err := db.DocumentRepository().SaveManifest(ctx, manifest); err != nil {
		panic(err)
	}

	slog.Info("catalog loaded",
		"documents", len(docs),
		"elapsed", time.Since(started).Round(time.Second).String())
}
