package ai

import (
	"context"

	"github.com/poiesic/shoplore/catalog"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel produces conversational replies grounded in a system prompt and
// the preceding dialog turns. Implementations must be thread-safe for
// concurrent use.
type ChatModel interface {
	// Reply generates the assistant's next utterance. The system prompt
	// carries the persona and any retrieved context; messages carry the
	// dialog history in chronological order, ending with the user's
	// current question.
	Reply(ctx context.Context, system string, messages []Message) (string, error)
}

// CatalogExtractor turns raw catalog text into structured products and
// knowledge cards.
type CatalogExtractor interface {
	// ExtractCatalog parses a catalog fragment and returns every product
	// and knowledge entry the model finds in it. The brand name steers
	// extraction toward the right manufacturer when fragments mention
	// several. Returns an error when the model output cannot be decoded
	// after all retry attempts.
	ExtractCatalog(ctx context.Context, text, brand string) (*catalog.File, error)
}

// AIProvider is a factory interface that provides access to AI services.
// It abstracts the underlying AI implementation (OpenAI-compatible endpoints,
// local models, mocks) and allows swapping providers without changing
// dependent code.
type AIProvider interface {
	// Embedder returns the embedding service for vector generation.
	Embedder() Embedder

	// ChatModel returns the conversational model used by the assistant.
	ChatModel() ChatModel

	// CatalogExtractor returns the catalog extraction service.
	CatalogExtractor() CatalogExtractor

	// Close releases any resources held by the provider.
	Close() error
}
