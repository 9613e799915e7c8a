package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
)

// retrievalHeadroom over-fetches candidates from the vector scan so the
// verbatim boost can promote documents from outside the top maxHits.
const retrievalHeadroom = 4

// verbatimBoost is added to the similarity score when a document contains
// every non-stopword query token.
const verbatimBoost = 0.3

// Searcher provides semantic search over catalog documents.
type Searcher struct {
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		embedder:           provider.Embedder(),
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for documents similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for documents similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Embed the query text as-is. Stored passages carry the e5
	// "passage: " prefix from build time; queries embed raw.
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(embedding)

	// 2. Vector scan, top-N with headroom. No similarity cutoff: the
	// nearest documents come back however weak the match.
	matches, err := s.documentRepository.FindSimilar(ctx, embedding, maxHits*retrievalHeadroom)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	if len(matches) == 0 {
		return []*core.SearchResult{}, nil
	}

	// 3. Retrieve the matched documents
	scores := make(map[core.ID]float32, len(matches))
	ids := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		scores[match.DocumentId] = match.Score
		ids = append(ids, match.DocumentId)
	}

	documents, err := s.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving documents", "documentCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterDocumentRetrieval(documents)

	// 4. Score and build results
	results := make([]*core.SearchResult, 0, len(documents))
	for _, document := range documents {
		if document == nil {
			continue
		}

		score := scores[document.Id]

		// Apply verbatim match boost
		if containsAllQueryWords(document.Contents, query) {
			score += verbatimBoost
			monitor.VerbatimHit(document)
		}

		results = append(results, &core.SearchResult{
			Document: document,
			Score:    score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
