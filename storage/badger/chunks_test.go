package badger

import (
	"context"
	"testing"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

func TestChunkBasics(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	chunk := &core.Chunk{
		FileId:     "docs/report.pdf",
		FileName:   "report.pdf",
		ChunkIndex: 0,
		Modality:   core.ModalityText,
		Text:       "Quarterly revenue grew by twelve percent.",
	}

	added, err := chunkRepo.AddChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	// Content-addressed: ID derives from file id + chunk index
	expectedId := core.IDFromContent(core.ChunkKey("docs/report.pdf", 0))
	if added[0].Id != expectedId {
		t.Fatalf("Expected ID %d, got %d", expectedId, added[0].Id)
	}

	retrieved, err := chunkRepo.GetChunk(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if retrieved.Text != chunk.Text {
		t.Fatalf("Expected %q, got %q", chunk.Text, retrieved.Text)
	}
	if retrieved.Modality != core.ModalityText {
		t.Fatalf("Expected text modality, got %q", retrieved.Modality)
	}
}

func TestChunkGetMissing(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.GetChunk(ctx, 12345)
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// GetChunks skips missing IDs without error
	chunks, err := chunkRepo.GetChunks(ctx, 12345, 67890)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Expected 0 chunks, got %d", len(chunks))
	}
}

func TestChunksByFile(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 1, Modality: core.ModalityText, Text: "second"},
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0, Modality: core.ModalityText, Text: "first"},
		&core.Chunk{FileId: "b.txt", FileName: "b.txt", ChunkIndex: 0, Modality: core.ModalityText, Text: "other file"},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	chunks, err := chunkRepo.GetChunksByFile(ctx, "a.txt")
	if err != nil {
		t.Fatalf("Failed to get chunks by file: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "first" || chunks[1].Text != "second" {
		t.Fatalf("Expected index order, got %q then %q", chunks[0].Text, chunks[1].Text)
	}
}

func TestChunkAddIdempotent(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	first, err := chunkRepo.AddChunks(ctx, &core.Chunk{
		FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0,
		Modality: core.ModalityText, Text: "original",
	})
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	// Re-adding the same file position overwrites under the same ID
	second, err := chunkRepo.AddChunks(ctx, &core.Chunk{
		FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0,
		Modality: core.ModalityText, Text: "updated",
	})
	if err != nil {
		t.Fatalf("Failed to re-add chunk: %v", err)
	}
	if first[0].Id != second[0].Id {
		t.Fatalf("Expected stable ID, got %d and %d", first[0].Id, second[0].Id)
	}

	retrieved, err := chunkRepo.GetChunk(ctx, first[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if retrieved.Text != "updated" {
		t.Fatalf("Expected updated text, got %q", retrieved.Text)
	}
}

func TestFindSimilar(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0, Modality: core.ModalityText,
			Text: "aligned", Vector: []float32{1, 0, 0}},
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 1, Modality: core.ModalityText,
			Text: "diagonal", Vector: []float32{0.7071, 0.7071, 0}},
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 2, Modality: core.ModalityText,
			Text: "orthogonal", Vector: []float32{0, 1, 0}},
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 3, Modality: core.ModalityText,
			Text: "no embedding"},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	matches, err := chunkRepo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.Text != "aligned" {
		t.Fatalf("Expected 'aligned' first, got %q", matches[0].Chunk.Text)
	}
	if matches[0].Score < 0.99 {
		t.Fatalf("Expected near-1.0 score, got %f", matches[0].Score)
	}
	if matches[1].Score >= matches[0].Score {
		t.Fatal("Expected descending score order")
	}
}

func TestFindSimilarModalityFilter(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0, Modality: core.ModalityText,
			Text: "text chunk", Vector: []float32{1, 0, 0}},
		&core.Chunk{FileId: "v.mp4", FileName: "v.mp4", ChunkIndex: 0, Modality: core.ModalityVideo,
			Text: "video transcript", Vector: []float32{1, 0, 0}},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	matches, err := chunkRepo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10, core.ModalityVideo)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	if matches[0].Chunk.Modality != core.ModalityVideo {
		t.Fatalf("Expected video chunk, got %q", matches[0].Chunk.Modality)
	}
}

func TestFindSimilarDimensionMismatch(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx, &core.Chunk{
		FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0,
		Modality: core.ModalityText, Text: "chunk", Vector: []float32{1, 0, 0},
	})
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	_, err = chunkRepo.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	if err != storage.ErrDimensionMismatch {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
}

func TestChunkMatchKeyword(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = chunkRepo.AddChunks(ctx,
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 0, Modality: core.ModalityText,
			Text: "The launch was delayed until March."},
		&core.Chunk{FileId: "a.txt", FileName: "a.txt", ChunkIndex: 1, Modality: core.ModalityText,
			Text: "Budget review happens quarterly."},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	chunks, err := chunkRepo.MatchKeyword(ctx, []string{"LAUNCH"}, 10)
	if err != nil {
		t.Fatalf("Failed to match keyword: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ChunkIndex != 0 {
		t.Fatalf("Expected chunk 0, got %d", chunks[0].ChunkIndex)
	}

	chunks, err = chunkRepo.MatchKeyword(ctx, []string{"nonexistent"}, 10)
	if err != nil {
		t.Fatalf("Failed to match keyword: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Expected 0 chunks, got %d", len(chunks))
	}
}

func TestListChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := chunkRepo.AddChunks(ctx, &core.Chunk{
			FileId:     "docs/report.pdf",
			FileName:   "report.pdf",
			ChunkIndex: i,
			Modality:   core.ModalityText,
			Text:       "list chunk body",
		})
		if err != nil {
			t.Fatalf("Failed to add chunk: %v", err)
		}
	}

	all, err := chunkRepo.ListChunks(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Failed to list chunks: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 chunks, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Id <= all[i-1].Id {
			t.Fatal("Expected ascending ID order")
		}
	}

	limited, err := chunkRepo.ListChunks(ctx, 0, 2)
	if err != nil {
		t.Fatalf("Failed to list chunks with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(limited))
	}

	after, err := chunkRepo.ListChunks(ctx, all[2].Id, 0)
	if err != nil {
		t.Fatalf("Failed to list chunks after ID: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("Expected 2 chunks after cursor, got %d", len(after))
	}
	for _, chunk := range after {
		if chunk.Id <= all[2].Id {
			t.Fatalf("Expected chunk ID beyond cursor, got %d", chunk.Id)
		}
	}
}

func TestCountChunks(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	count, err := chunkRepo.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 chunks, got %d", count)
	}

	for i := 0; i < 3; i++ {
		_, err := chunkRepo.AddChunks(ctx, &core.Chunk{
			FileId:     "docs/report.pdf",
			FileName:   "report.pdf",
			ChunkIndex: i,
			Modality:   core.ModalityText,
			Text:       "count chunk body",
		})
		if err != nil {
			t.Fatalf("Failed to add chunk: %v", err)
		}
	}

	count, err = chunkRepo.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 chunks, got %d", count)
	}
}

func TestFindSimilarTieOrderDeterministic(t *testing.T) {
	chunkRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// All chunks identical to the query vector: every similarity ties
	for i := 0; i < 4; i++ {
		_, err := chunkRepo.AddChunks(ctx, &core.Chunk{
			FileId:     "docs/report.pdf",
			FileName:   "report.pdf",
			ChunkIndex: i,
			Modality:   core.ModalityText,
			Text:       "tied similarity chunk",
			Vector:     []float32{1, 0, 0},
		})
		if err != nil {
			t.Fatalf("Failed to add chunk: %v", err)
		}
	}

	query := []float32{1, 0, 0}
	first, err := chunkRepo.FindSimilar(ctx, query, 0.5, 2)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(first))
	}
	// Ties keep scan order: ascending chunk ID
	if first[0].Chunk.Id >= first[1].Chunk.Id {
		t.Fatal("Expected tied matches in ascending ID order")
	}

	second, err := chunkRepo.FindSimilar(ctx, query, 0.5, 2)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	for i := range first {
		if first[i].Chunk.Id != second[i].Chunk.Id {
			t.Fatalf("Expected identical order across runs, got %d vs %d at %d",
				first[i].Chunk.Id, second[i].Chunk.Id, i)
		}
	}
}
