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


package shoplore

import (
	"log/slog"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/ai/openai"
	"github.com/poiesic/shoplore/assistant"
	"github.com/poiesic/shoplore/ingestion"
	"github.com/poiesic/shoplore/search"
	"github.com/poiesic/shoplore/storage"
	"github.com/poiesic/shoplore/storage/badger"
)

// Database bundles the storage backend, the repositories and the AI
// provider behind a single handle.
type Database struct {
	backend      *badger.Backend
	documentRepo storage.DocumentRepository
	dialogRepo   storage.DialogRepository
	provider     ai.AIProvider
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the AI endpoint configuration used for embeddings
// and chat completions.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create dialog repository
	dialogRepo, err := badger.NewDialogRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		dialogRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		documentRepo: documentRepo,
		dialogRepo:   dialogRepo,
		provider:     provider,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.dialogRepo.Close(); err != nil {
		db.logger.Error("error closing dialog repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) DialogRepository() storage.DialogRepository {
	return db.dialogRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.documentRepo, db.provider, opts...)
}

// NewAssistant builds the conversational assistant on top of this
// database's repositories and chat model.
func (db *Database) NewAssistant(opts ...assistant.Option) (*assistant.Assistant, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return assistant.New(db.dialogRepo, searcher, db.provider.ChatModel(), opts...)
}
