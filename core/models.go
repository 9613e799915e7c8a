package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocKind identifies the kind of knowledge-base document.
type DocKind int

const (
	// DocKindProduct represents a catalog product entry.
	DocKindProduct DocKind = iota + 1
	// DocKindGuide represents a knowledge-base article.
	DocKindGuide
)

// String returns the metadata value used for the document kind.
func (k DocKind) String() string {
	switch k {
	case DocKindProduct:
		return "product"
	case DocKindGuide:
		return "guide"
	default:
		return "unknown"
	}
}

// Document represents a single knowledge-base entry in the vector store.
// Its Id is derived from the slug, so rebuilding the store from the same
// catalog yields the same keys.
type Document struct {
	Id         ID
	Slug       string            // Deterministic human-readable identifier (e.g. "product_reviderm_cleansing_milk")
	Kind       DocKind
	Title      string            // Product name or article title
	Contents   string            // Full passage text as composed at build time
	Metadata   map[string]string // Catalog attributes (brand, line, skin_type, skus, ...)
	Vector     []float32         // Embedding vector for semantic search (populated by the pipeline)
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Role identifies the author of a dialog message.
type Role int

const (
	// RoleUser represents the Telegram user.
	RoleUser Role = iota + 1
	// RoleAssistant represents the bot.
	RoleAssistant
)

// DialogRecord represents a single message in a Telegram conversation.
// Records are persisted per chat so the assistant's context survives restarts.
type DialogRecord struct {
	Id         ID
	ChatID     int64
	UserID     int64
	Username   string
	FirstName  string
	LastName   string
	Role       Role
	Contents   string
	Timestamp  time.Time // When the message was sent or answered
	InsertedAt time.Time // When the record was inserted into the database
	UpdatedAt  time.Time // When the record was last updated
}

// SimilarityMatch represents a document match from vector similarity search.
type SimilarityMatch struct {
	DocumentId ID
	Score      float32
}

// SearchResult represents a search result with the full document and relevance score.
type SearchResult struct {
	Document *Document
	Score    float32
}

// Manifest records the outcome of the most recent catalog ingest.
// The seeder stores it after a successful run so operators can see what
// the database currently holds and which model produced the vectors.
// Reembedding refreshes EmbeddingModel and UpdatedAt in place.
type Manifest struct {
	EmbeddingModel string
	Documents      int
	Products       int
	Guides         int
	IngestedAt     time.Time
	UpdatedAt      time.Time
}
