package storage

import (
	"context"
	"time"

	"github.com/poiesic/shoplore/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing knowledge-base documents.
type DocumentRepository interface {
	Repository

	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, derives the ID from the slug.
	// InsertedAt and UpdatedAt are stamped at insert time.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated slug indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetAllDocuments retrieves every document, ordered by ID.
	GetAllDocuments(ctx context.Context) ([]*core.Document, error)

	// FindDocumentBySlug retrieves a document via the slug index.
	// Returns ErrNotFound if no document has the slug.
	FindDocumentBySlug(ctx context.Context, slug string) (*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// PurgeDocuments removes every document, the slug index and the
	// ingest manifest. The seeder calls this before reloading a catalog.
	PurgeDocuments(ctx context.Context) error

	// FindSimilar finds documents similar to the given vector.
	// Returns up to limit matches ordered by similarity score (highest
	// first). Documents without vectors are skipped.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error)

	// SaveManifest stores the ingest manifest, replacing any previous one.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest retrieves the ingest manifest.
	// Returns (nil, nil) if no manifest has been stored.
	LoadManifest(ctx context.Context) (*core.Manifest, error)
}

// DialogRepository provides operations for managing Telegram dialog records.
type DialogRepository interface {
	Repository

	// AddDialogRecords adds one or more dialog records to storage.
	// Record IDs are always assigned from the database sequence;
	// InsertedAt and UpdatedAt are stamped at insert time.
	// Returns the records with generated IDs and timestamps populated.
	AddDialogRecords(ctx context.Context, records ...*core.DialogRecord) ([]*core.DialogRecord, error)

	// GetDialogRecord retrieves a single dialog record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetDialogRecord(ctx context.Context, id core.ID) (*core.DialogRecord, error)

	// GetRecentDialogRecords retrieves the N most recent records of one chat,
	// ordered by timestamp descending.
	GetRecentDialogRecords(ctx context.Context, chatID int64, limit int) ([]*core.DialogRecord, error)

	// GetDialogRecordsByDateRange retrieves one chat's records within a time range.
	// Returns records where start <= Timestamp < end, ordered by timestamp.
	GetDialogRecordsByDateRange(ctx context.Context, chatID int64, start, end time.Time) ([]*core.DialogRecord, error)

	// DeleteDialogRecords removes dialog records by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteDialogRecords(ctx context.Context, ids ...core.ID) error
}
