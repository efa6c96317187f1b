package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
	badgerstore "github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (storage.ChunkRepository, storage.CheckpointRepository) {
	t.Helper()
	chunkRepo, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return chunkRepo, badgerstore.NewCheckpointRepository(backend)
}

func addTestChunks(t *testing.T, repo storage.ChunkRepository, n int) []*core.Chunk {
	t.Helper()
	chunks := make([]*core.Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.Chunk{
			FileId:     "notes.txt",
			FileName:   "notes.txt",
			ChunkIndex: i,
			Modality:   core.ModalityText,
			Text:       fmt.Sprintf("chunk number %d", i),
		}
	}
	added, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestChunkIterator_ForEach(t *testing.T) {
	repo, _ := setupTestRepo(t)
	addTestChunks(t, repo, 10)

	it := NewChunkIterator(repo, 3)

	var batches []int
	var lastId core.ID
	err := it.ForEach(context.Background(), 0, func(chunks []*core.Chunk) error {
		batches = append(batches, len(chunks))
		for _, chunk := range chunks {
			assert.Greater(t, chunk.Id, lastId, "chunks must arrive in ascending ID order")
			lastId = chunk.Id
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 1}, batches)
}

func TestChunkIterator_ResumeAfter(t *testing.T) {
	repo, _ := setupTestRepo(t)
	addTestChunks(t, repo, 6)

	it := NewChunkIterator(repo, 100)

	var all []*core.Chunk
	err := it.ForEach(context.Background(), 0, func(chunks []*core.Chunk) error {
		all = append(all, chunks...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, all, 6)

	resumeAfter := all[2].Id
	var resumed []*core.Chunk
	err = it.ForEach(context.Background(), resumeAfter, func(chunks []*core.Chunk) error {
		resumed = append(resumed, chunks...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, resumed, 3)
	for _, chunk := range resumed {
		assert.Greater(t, chunk.Id, resumeAfter)
	}
}

func TestChunkIterator_Empty(t *testing.T) {
	repo, _ := setupTestRepo(t)

	it := NewChunkIterator(repo, 10)
	calls := 0
	err := it.ForEach(context.Background(), 0, func(chunks []*core.Chunk) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestChunkIterator_Count(t *testing.T) {
	repo, _ := setupTestRepo(t)
	addTestChunks(t, repo, 7)

	it := NewChunkIterator(repo, 2)
	total, err := it.Count(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestChunkIterator_StopsOnError(t *testing.T) {
	repo, _ := setupTestRepo(t)
	addTestChunks(t, repo, 10)

	it := NewChunkIterator(repo, 2)
	calls := 0
	err := it.ForEach(context.Background(), 0, func(chunks []*core.Chunk) error {
		calls++
		if calls == 2 {
			return fmt.Errorf("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
