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

package badger

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// ChunkRepository implements storage.ChunkRepository backed by BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a chunk repository using the given backend.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// WithTransaction implements storage.Repository.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close implements storage.Repository. The backend is shared across
// repositories, so closing it here is a no-op; close the backend instead.
func (r *ChunkRepository) Close() error {
	return nil
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	now := time.Now()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(core.ChunkKey(chunk.FileId, chunk.ChunkIndex))
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = now
			}

			if err := tx.Set(makeChunkRecordKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkFileKey(chunk.FileId, chunk.ChunkIndex), idToValue(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunk, err = readChunk(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunks retrieves multiple chunks, skipping IDs that don't exist.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, id)
			if err == storage.ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunksByFile retrieves all chunks of a file ordered by chunk index.
func (r *ChunkRepository) GetChunksByFile(ctx context.Context, fileId string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkFilePrefix(fileId)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var chunkId core.ID
			err := it.Item().Value(func(value []byte) error {
				chunkId = idFromValue(value)
				return nil
			})
			if err != nil {
				return err
			}
			chunk, err := readChunk(tx, chunkId)
			if err == storage.ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// ListChunks returns chunks in ascending ID order, starting after afterId.
// Record keys embed the ID big-endian, so key order is ID order.
func (r *ChunkRepository) ListChunks(ctx context.Context, afterId core.ID, limit int) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		start := []byte(chunkRecordPrefix)
		if afterId != 0 {
			start = makeChunkRecordKey(afterId)
		}
		for it.Seek(start); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := it.Item().Value(func(value []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(value)
				return err
			})
			if err != nil {
				return err
			}
			if chunk.Id <= afterId {
				continue
			}
			chunks = append(chunks, chunk)
			if limit > 0 && len(chunks) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// FindSimilar scans all chunks and ranks them by cosine similarity.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, modalities ...core.Modality) ([]*storage.SimilarityMatch, error) {
	if len(vector) == 0 {
		return nil, storage.ErrDimensionMismatch
	}

	var matches []*storage.SimilarityMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := it.Item().Value(func(value []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(value)
				return err
			})
			if err != nil {
				return err
			}

			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}
			if len(chunk.Vector) != len(vector) {
				return storage.ErrDimensionMismatch
			}
			if len(modalities) > 0 && !slices.Contains(modalities, chunk.Modality) {
				continue
			}

			similarity := cosineSimilarity(vector, chunk.Vector)
			if similarity >= minSimilarity {
				matches = append(matches, &storage.SimilarityMatch{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Stable so equal-similarity chunks keep their key-scan order and a
	// limit cut is deterministic
	slices.SortStableFunc(matches, func(a, b *storage.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// MatchKeyword finds chunks whose text contains any of the given tokens.
func (r *ChunkRepository) MatchKeyword(ctx context.Context, tokens []string, limit int) ([]*core.Chunk, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(tokens))
	for i, token := range tokens {
		lowered[i] = strings.ToLower(token)
	}

	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := it.Item().Value(func(value []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(value)
				return err
			})
			if err != nil {
				return err
			}

			text := strings.ToLower(chunk.Text)
			for _, token := range lowered {
				if strings.Contains(text, token) {
					chunks = append(chunks, chunk)
					break
				}
			}
			if limit > 0 && len(chunks) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func readChunk(tx *badger.Txn, id core.ID) (*core.Chunk, error) {
	item, err := tx.Get(makeChunkRecordKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var chunk *core.Chunk
	err = item.Value(func(value []byte) error {
		chunk, err = storage.UnmarshalChunk(value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// cosineSimilarity computes cosine similarity between two vectors of
// equal length. Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// CountChunks returns the number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	return r.backend.countKeys(ctx, []byte(chunkRecordPrefix))
}
