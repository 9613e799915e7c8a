package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/shoplore/ai"
	"github.com/poiesic/shoplore/core"
	"github.com/poiesic/shoplore/storage"
)

// defaultBatchSize is how many documents each embedding task covers.
const defaultBatchSize = 32

// Pipeline loads catalog documents into storage and fills in their
// embeddings concurrently.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	proc               *embeddingProcessor
	pool               *ants.Pool
	batchSize          int
	logger             *slog.Logger

	wg sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per worker task.
// Default is 32, with a minimum of 1.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documentRepository: documentRepository,
		pool:               pool,
		batchSize:          defaultBatchSize,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets the final logger)
	proc, err := newEmbeddingProcessor(documentRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.proc = proc

	return p, nil
}

// Ingest validates and stores documents, then submits them for
// embedding in batches on the worker pool. Call Wait to join the
// submitted batches and collect their errors.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) error {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return fmt.Errorf("document %q: %w", doc.Slug, err)
		}
	}

	added, err := p.documentRepository.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		return nil
	}

	// Extract IDs
	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	// Submit for async processing, one task per batch
	for start := 0; start < len(ids); start += p.batchSize {
		end := start + p.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch := ids[start:end]
		index := start / p.batchSize

		p.wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer p.wg.Done()
			if err := p.proc.process(ctx, batch...); err != nil {
				p.logger.Error("error embedding batch", "batch", index, "err", err)
				p.recordError(fmt.Errorf("batch %d: %w", index, err))
			}
		})
		if submitErr != nil {
			p.wg.Done()
			return submitErr
		}
	}

	return nil
}

// Wait blocks until all submitted embedding batches finish and returns
// their joined errors, if any.
func (p *Pipeline) Wait() error {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	err := errors.Join(p.errs...)
	p.errs = nil
	return err
}

func (p *Pipeline) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
