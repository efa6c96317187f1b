package storage

import (
	"context"

	"github.com/poiesic/askit/core"
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

// SimilarityMatch is a chunk hit from vector similarity search.
type SimilarityMatch struct {
	Chunk *core.Chunk
	Score float32 // Cosine similarity in [0,1]
}

// ChunkRepository provides operations for managing content chunks and
// searching them by embedding similarity or keyword match.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives the ID from ChunkKey(FileId, ChunkIndex).
	// Sets InsertedAt timestamp if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByFile retrieves all chunks of a file ordered by chunk index.
	GetChunksByFile(ctx context.Context, fileId string) ([]*core.Chunk, error)

	// FindSimilar finds chunks whose embedding vector has cosine similarity
	// >= minSimilarity with the given vector, up to limit results, ordered
	// by similarity descending. When modalities is non-empty, only chunks
	// of those modalities are considered.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, modalities ...core.Modality) ([]*SimilarityMatch, error)

	// MatchKeyword finds chunks whose text contains any of the given tokens,
	// case-insensitively, up to limit results.
	MatchKeyword(ctx context.Context, tokens []string, limit int) ([]*core.Chunk, error)

	// ListChunks returns all chunks in stable ID order, starting after the
	// given ID. Pass 0 to start from the beginning. Returns at most limit
	// chunks; limit <= 0 means no limit.
	ListChunks(ctx context.Context, afterId core.ID, limit int) ([]*core.Chunk, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// Traversal is one step of a breadth-first graph walk: the entity reached,
// the relationship it was reached through, and the depth at which it was
// found. The start entity is reported at depth 1 with a nil relationship.
type Traversal struct {
	Entity       *core.Entity
	Relationship *core.Relationship
	Depth        int
}

// GraphRepository provides operations for managing the entity/relationship
// graph and querying it by exact lookup, traversal, or keyword match.
type GraphRepository interface {
	Repository

	// AddEntities adds one or more entities to storage.
	// IDs are derived from the deterministic entity key, so the same
	// entity observed in different files or modalities merges into one
	// node. Re-adding an existing entity keeps the higher confidence.
	AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error)

	// AddRelationships adds one or more relationships to storage and
	// maintains the adjacency index for traversal. Both endpoints must
	// already exist; returns ErrNotFound otherwise.
	AddRelationships(ctx context.Context, rels ...*core.Relationship) ([]*core.Relationship, error)

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.Entity, error)

	// FindEntityByName finds an entity by exact normalized-name match,
	// trying each entity type. Returns ErrNotFound if no type matches.
	FindEntityByName(ctx context.Context, name string) (*core.Entity, error)

	// Traverse walks relationship edges breadth-first from the given
	// entity up to maxDepth, tracking visited nodes to prevent cycles.
	// The start entity is included at depth 1; discovered neighbors
	// follow in increasing depth order.
	Traverse(ctx context.Context, startId core.ID, maxDepth int) ([]*Traversal, error)

	// Neighbors returns the relationships incident to an entity, in both
	// directions.
	Neighbors(ctx context.Context, id core.ID) ([]*core.Relationship, error)

	// MatchKeyword finds entities whose name or description contains any
	// of the given tokens, case-insensitively, up to limit results.
	MatchKeyword(ctx context.Context, tokens []string, limit int) ([]*core.Entity, error)

	// CountEntities returns the number of stored entities.
	CountEntities(ctx context.Context) (int, error)

	// CountRelationships returns the number of stored relationships.
	CountRelationships(ctx context.Context) (int, error)
}

// CheckpointRepository persists resume positions for long-running batch
// processors, such as chunk re-embedding.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a processor type,
	// overwriting any previous one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a processor type.
	// Clearing a checkpoint that does not exist is not an error.
	ClearCheckpoint(ctx context.Context, processorType string) error
}
