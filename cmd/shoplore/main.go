// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/shoplore"
	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/ai/openai"
	"github.com/poiesic/shoplore/bot"
	"github.com/poiesic/shoplore/catalog"
	"github.com/poiesic/shoplore/reembed"
	"github.com/poiesic/shoplore/sheets"
	"github.com/poiesic/shoplore/storage/badger"
)

func main() {
	// .env is optional; deployments may pass environment variables directly
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shoplore",
		Usage: "Telegram catalog assistant for the cosmetics shop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the Telegram bot",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Usage:   "Path to BadgerDB database directory",
						Value:   "./shop_db",
						EnvVars: []string{"SHOPLORE_DB"},
					},
					&cli.StringFlag{
						Name:     "telegram-token",
						Usage:    "Telegram bot API token",
						Required: true,
						EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
					},
					&cli.Int64Flag{
						Name:    "group-id",
						Usage:   "Chat ID of the managers' group for request notifications (0 disables them)",
						EnvVars: []string{"TELEGRAM_GROUP_ID"},
					},
					&cli.StringFlag{
						Name:    "chat-host",
						Usage:   "Chat completion service host URL",
						Value:   "https://api.proxyapi.ru/openai/v1",
						EnvVars: []string{"OPENAI_PROXY_API_URL"},
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the chat completion service",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "chat-model",
						Usage:   "Chat completion model name",
						Value:   "gpt-4o-mini",
						EnvVars: []string{"OPENAI_MODEL"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "multilingual-e5-base",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:    "sheets-credentials",
						Usage:   "Path to the Google service account credentials JSON",
						Value:   "credentials.json",
						EnvVars: []string{"GOOGLE_SHEETS_CREDENTIALS_FILE"},
					},
					&cli.StringFlag{
						Name:    "spreadsheet-id",
						Usage:   "Google Sheets spreadsheet ID for request and dialog logging",
						EnvVars: []string{"GOOGLE_SHEETS_SPREADSHEET_ID"},
					},
				},
			},
			{
				Name:   "extract",
				Usage:  "Extract a structured catalog from raw brand text",
				Action: extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the raw catalog text file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path for the extracted catalog JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "brand",
						Usage: "Brand name (inferred from the input filename when empty)",
					},
					&cli.StringFlag{
						Name:    "chat-host",
						Usage:   "Chat completion service host URL",
						Value:   "https://api.proxyapi.ru/openai/v1",
						EnvVars: []string{"OPENAI_PROXY_API_URL"},
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the chat completion service",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "chat-model",
						Usage:   "Chat completion model name",
						Value:   "gpt-4o-mini",
						EnvVars: []string{"OPENAI_MODEL"},
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Extraction chunk size in characters",
						Value: catalog.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum extraction attempts per chunk",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Pause between extraction attempts",
						Value: 10 * time.Second,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all documents with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiConfig := ai.NewConfig(
		ai.WithChatHost(c.String("chat-host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("api-key")),
	)

	// Open database
	db, err := shoplore.NewDatabase(c.String("db"), shoplore.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := logKnowledgeBase(ctx, db, c.String("embedding-model")); err != nil {
		return err
	}

	assist, err := db.NewAssistant()
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}

	sheet := setupSheets(ctx, c.String("sheets-credentials"), c.String("spreadsheet-id"))

	b, err := bot.New(bot.Config{
		Token:   c.String("telegram-token"),
		GroupID: c.Int64("group-id"),
	}, assist, sheet)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	if err := b.Run(ctx); err != nil {
		return err
	}

	slog.Info("bot stopped")
	return nil
}

// logKnowledgeBase reports what the document store currently holds so a
// bot started against an empty or stale database is visible immediately.
func logKnowledgeBase(ctx context.Context, db *shoplore.Database, embeddingModel string) error {
	count, err := db.DocumentRepository().CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		slog.Warn("knowledge base is empty, run the seeder first")
	} else {
		slog.Info("knowledge base loaded", "documents", count)
	}

	manifest, err := db.DocumentRepository().LoadManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest == nil {
		return nil
	}

	slog.Info("ingest manifest",
		"embedding_model", manifest.EmbeddingModel,
		"products", manifest.Products,
		"guides", manifest.Guides,
		"ingested_at", manifest.IngestedAt.Format(time.RFC3339))
	if manifest.EmbeddingModel != embeddingModel {
		slog.Warn("stored vectors were built with a different embedding model",
			"stored", manifest.EmbeddingModel,
			"configured", embeddingModel)
	}
	return nil
}

// setupSheets builds the Google Sheets logging service. Any failure
// disables request and dialog logging rather than blocking the bot.
func setupSheets(ctx context.Context, credentialsPath, spreadsheetID string) *sheets.Service {
	if spreadsheetID == "" {
		slog.Warn("spreadsheet id not configured, request and dialog logging disabled")
		return nil
	}

	creds, err := sheets.LoadCredentials(credentialsPath)
	if err != nil {
		slog.Warn("sheets credentials unavailable, request and dialog logging disabled", "error", err)
		return nil
	}

	svc, err := sheets.New(creds, spreadsheetID)
	if err != nil {
		slog.Warn("sheets service unavailable, request and dialog logging disabled", "error", err)
		return nil
	}

	if err := svc.EnsureWorksheets(ctx); err != nil {
		slog.Warn("sheets worksheet check failed, request and dialog logging disabled", "error", err)
		return nil
	}

	return svc
}

func extractCommand(c *cli.Context) error {
	ctx := context.Background()

	inputPath := c.String("input")
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	brand := c.String("brand")
	if brand == "" {
		brand = catalog.InferBrand(inputPath)
	}

	chunks := catalog.SplitText(string(data), c.Int("chunk-size"))
	if len(chunks) == 0 {
		return fmt.Errorf("input file %s is empty", inputPath)
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithChatHost(c.String("chat-host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithToken(c.String("api-key")),
		ai.WithExtractAttempts(c.Int("max-retries")),
		ai.WithExtractRetryDelay(c.Duration("retry-delay")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	extractor, err := openai.NewCatalogExtractor(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Input: %s\n", inputPath)
	fmt.Fprintf(os.Stderr, "Brand: %s\n", brand)
	fmt.Fprintf(os.Stderr, "Chunks: %d\n", len(chunks))
	fmt.Fprintln(os.Stderr)

	merged := &catalog.File{}
	failed := 0
	for i, chunk := range chunks {
		fmt.Fprintf(os.Stderr, "Extracting chunk %d/%d...\n", i+1, len(chunks))
		part, err := extractor.ExtractCatalog(ctx, chunk, brand)
		if err != nil {
			slog.Error("chunk extraction failed, skipping", "chunk", i+1, "error", err)
			failed++
			continue
		}
		merged.Products = append(merged.Products, part.Products...)
		merged.Knowledge = append(merged.Knowledge, part.Knowledge...)
	}
	if failed == len(chunks) {
		return fmt.Errorf("extraction failed for all %d chunks", len(chunks))
	}

	// Product IDs restart inside every chunk; renumber continuously
	for i := range merged.Products {
		merged.Products[i].ID = fmt.Sprintf("%06d", i+1)
	}

	if err := writeCatalogFile(c.String("output"), merged); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d products and %d knowledge entries to %s\n",
		len(merged.Products), len(merged.Knowledge), c.String("output"))
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d failed chunks\n", failed)
	}
	return nil
}

// writeCatalogFile writes the catalog with two-space indentation and
// without HTML escaping, keeping the Russian text readable in diffs.
func writeCatalogFile(path string, f *catalog.File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		out.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return out.Close()
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reembedding config
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reembedder
	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	// The vectors now match the new model; record that in the manifest
	manifest, err := repo.LoadManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest != nil {
		manifest.EmbeddingModel = c.String("embedding-model")
		if err := repo.SaveManifest(ctx, manifest); err != nil {
			return fmt.Errorf("failed to update manifest: %w", err)
		}
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
