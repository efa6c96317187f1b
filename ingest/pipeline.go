// Package ingest persists pre-chunked multimodal content and its
// extracted knowledge graph. Parsing, transcription, and entity
// extraction happen upstream; this package embeds chunk text and writes
// everything through the storage repositories.
package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// Pipeline ingests chunks and graph data. Chunk embeddings are computed
// concurrently on a worker pool before persisting.
type Pipeline struct {
	chunkRepository storage.ChunkRepository
	graphRepository storage.GraphRepository
	embedder        ai.Embedder
	pool            *ants.Pool
	logger          *slog.Logger
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

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	graphRepository storage.GraphRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if graphRepository == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository: chunkRepository,
		graphRepository: graphRepository,
		embedder:        provider.Embedder(),
		pool:            pool,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestChunks embeds and persists chunks. Embedding runs on the worker
// pool; a chunk whose embedding fails is persisted without a vector so
// keyword search still reaches it, and the failure is logged.
func (p *Pipeline) IngestChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	var wg sync.WaitGroup
	for _, chunk := range chunks {
		if len(chunk.Vector) > 0 {
			continue
		}
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			vector, err := p.embedder.EmbedText(ctx, chunk.Text)
			if err != nil {
				p.logger.Error("error embedding chunk",
					"file", chunk.FileId, "index", chunk.ChunkIndex, "err", err)
				return
			}
			chunk.Vector = vector
		})
		if submitErr != nil {
			p.logger.Error("error submitting embedding job", "err", submitErr)
			wg.Done()
		}
	}
	wg.Wait()

	return p.chunkRepository.AddChunks(ctx, chunks...)
}

// IngestGraph persists extracted entities and their relationships.
// Entities are written first so relationship endpoint checks pass.
// Relationship endpoints reference entity IDs; since IDs derive from
// the entity identity key, callers can compute them with
// core.IDFromContent(core.EntityKey(name, type)) before the entities
// are stored.
func (p *Pipeline) IngestGraph(ctx context.Context, entities []*core.Entity, rels []*core.Relationship) error {
	if len(entities) > 0 {
		if _, err := p.graphRepository.AddEntities(ctx, entities...); err != nil {
			return err
		}
	}
	if len(rels) > 0 {
		if _, err := p.graphRepository.AddRelationships(ctx, rels...); err != nil {
			return err
		}
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
