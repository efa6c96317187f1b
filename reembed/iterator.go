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

package reembed

import (
	"context"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

const (
	// DefaultBatchSize is the default number of chunks fetched per batch
	DefaultBatchSize = 100
)

// ChunkIterator pages through all chunks in stable ID order, fetching one
// batch at a time so the full corpus never has to fit in memory.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to fetch in each batch (must be > 0)
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over chunks with IDs greater than afterId, calling fn
// for each batch. Iteration stops on first error from fn or when all
// chunks are processed. Context cancellation is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, afterId core.ID, fn func([]*core.Chunk) error) error {
	cursor := afterId
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := it.repo.ListChunks(ctx, cursor, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		cursor = batch[len(batch)-1].Id
	}
}

// Count returns the number of chunks with IDs greater than afterId.
func (it *ChunkIterator) Count(ctx context.Context, afterId core.ID) (int, error) {
	total := 0
	err := it.ForEach(ctx, afterId, func(batch []*core.Chunk) error {
		total += len(batch)
		return nil
	})
	return total, err
}
