package badger

import (
	"context"
	"testing"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

func TestEntityBasics(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	entity := &core.Entity{
		Name:           "Acme Corp",
		Type:           core.EntityTypeOrganization,
		Description:    "Widget manufacturer",
		Confidence:     0.9,
		SourceFileId:   "docs/report.pdf",
		SourceModality: core.ModalityText,
	}

	added, err := graphRepo.AddEntities(ctx, entity)
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 entity, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := graphRepo.GetEntity(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if retrieved.Name != "Acme Corp" {
		t.Fatalf("Expected 'Acme Corp', got %q", retrieved.Name)
	}
}

func TestEntityCrossModalMerge(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// Same person observed in a document and in a video transcript.
	// Name casing and spacing differ; identity resolution normalizes both.
	fromDoc := &core.Entity{
		Name: "John Smith", Type: core.EntityTypePerson,
		Confidence: 0.8, SourceFileId: "report.pdf", SourceModality: core.ModalityText,
	}
	fromVideo := &core.Entity{
		Name: "john  SMITH", Type: core.EntityTypePerson,
		Confidence: 0.95, SourceFileId: "standup.mp4", SourceModality: core.ModalityVideo,
	}

	first, err := graphRepo.AddEntities(ctx, fromDoc)
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}
	second, err := graphRepo.AddEntities(ctx, fromVideo)
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}

	if first[0].Id != second[0].Id {
		t.Fatalf("Expected same ID across modalities, got %d and %d", first[0].Id, second[0].Id)
	}

	// Higher-confidence observation wins
	merged, err := graphRepo.GetEntity(ctx, first[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if merged.Confidence != 0.95 {
		t.Fatalf("Expected confidence 0.95, got %f", merged.Confidence)
	}

	// Re-adding with lower confidence keeps the stored record
	_, err = graphRepo.AddEntities(ctx, &core.Entity{
		Name: "John Smith", Type: core.EntityTypePerson,
		Confidence: 0.5, SourceFileId: "notes.txt", SourceModality: core.ModalityText,
	})
	if err != nil {
		t.Fatalf("Failed to re-add entity: %v", err)
	}
	kept, err := graphRepo.GetEntity(ctx, first[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entity: %v", err)
	}
	if kept.Confidence != 0.95 {
		t.Fatalf("Expected confidence 0.95 kept, got %f", kept.Confidence)
	}
}

func TestFindEntityByName(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = graphRepo.AddEntities(ctx, &core.Entity{
		Name: "Berlin", Type: core.EntityTypeLocation,
		Confidence: 0.9, SourceFileId: "travel.txt", SourceModality: core.ModalityText,
	})
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}

	found, err := graphRepo.FindEntityByName(ctx, "  berlin ")
	if err != nil {
		t.Fatalf("Failed to find entity: %v", err)
	}
	if found.Type != core.EntityTypeLocation {
		t.Fatalf("Expected location, got %q", found.Type)
	}

	_, err = graphRepo.FindEntityByName(ctx, "Paris")
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRelationshipEndpointsMustExist(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = graphRepo.AddRelationships(ctx, &core.Relationship{
		SourceId: 1, TargetId: 2, Type: core.RelationRelatedTo, Confidence: 0.5,
	})
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

// addTestGraph builds: alice -WORKS_FOR-> acme -LOCATED_IN-> berlin,
// plus bob -WORKS_FOR-> acme. From alice: acme at depth 2, berlin and
// bob at depth 3.
func addTestGraph(t *testing.T, graphRepo storage.GraphRepository) (alice, acme, berlin, bob *core.Entity) {
	t.Helper()
	ctx := context.Background()

	entities, err := graphRepo.AddEntities(ctx,
		&core.Entity{Name: "Alice", Type: core.EntityTypePerson, Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
		&core.Entity{Name: "Acme", Type: core.EntityTypeOrganization, Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
		&core.Entity{Name: "Berlin", Type: core.EntityTypeLocation, Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
		&core.Entity{Name: "Bob", Type: core.EntityTypePerson, Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
	)
	if err != nil {
		t.Fatalf("Failed to add entities: %v", err)
	}
	alice, acme, berlin, bob = entities[0], entities[1], entities[2], entities[3]

	_, err = graphRepo.AddRelationships(ctx,
		&core.Relationship{SourceId: alice.Id, TargetId: acme.Id, Type: core.RelationWorksFor, Confidence: 0.9},
		&core.Relationship{SourceId: acme.Id, TargetId: berlin.Id, Type: core.RelationLocatedIn, Confidence: 0.9},
		&core.Relationship{SourceId: bob.Id, TargetId: acme.Id, Type: core.RelationWorksFor, Confidence: 0.9},
	)
	if err != nil {
		t.Fatalf("Failed to add relationships: %v", err)
	}
	return alice, acme, berlin, bob
}

func TestTraverse(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	alice, acme, _, _ := addTestGraph(t, graphRepo)

	walk, err := graphRepo.Traverse(ctx, alice.Id, 3)
	if err != nil {
		t.Fatalf("Failed to traverse: %v", err)
	}
	if len(walk) != 4 {
		t.Fatalf("Expected 4 traversal steps, got %d", len(walk))
	}

	if walk[0].Entity.Id != alice.Id || walk[0].Depth != 1 || walk[0].Relationship != nil {
		t.Fatal("Expected start entity at depth 1 with nil relationship")
	}
	if walk[1].Entity.Id != acme.Id || walk[1].Depth != 2 {
		t.Fatalf("Expected acme at depth 2, got %q at depth %d", walk[1].Entity.Name, walk[1].Depth)
	}
	for _, step := range walk[2:] {
		if step.Depth != 3 {
			t.Fatalf("Expected depth 3, got %d for %q", step.Depth, step.Entity.Name)
		}
	}
}

func TestTraverseDepthLimit(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	alice, _, _, _ := addTestGraph(t, graphRepo)

	walk, err := graphRepo.Traverse(ctx, alice.Id, 2)
	if err != nil {
		t.Fatalf("Failed to traverse: %v", err)
	}
	if len(walk) != 2 {
		t.Fatalf("Expected 2 traversal steps at depth limit 2, got %d", len(walk))
	}

	walk, err = graphRepo.Traverse(ctx, alice.Id, 1)
	if err != nil {
		t.Fatalf("Failed to traverse: %v", err)
	}
	if len(walk) != 1 {
		t.Fatalf("Expected only the start entity at depth limit 1, got %d", len(walk))
	}
}

func TestTraverseCycle(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	entities, err := graphRepo.AddEntities(ctx,
		&core.Entity{Name: "A", Type: core.EntityTypeConcept, Confidence: 0.9,
			SourceFileId: "c.txt", SourceModality: core.ModalityText},
		&core.Entity{Name: "B", Type: core.EntityTypeConcept, Confidence: 0.9,
			SourceFileId: "c.txt", SourceModality: core.ModalityText},
	)
	if err != nil {
		t.Fatalf("Failed to add entities: %v", err)
	}

	_, err = graphRepo.AddRelationships(ctx,
		&core.Relationship{SourceId: entities[0].Id, TargetId: entities[1].Id, Type: core.RelationRelatedTo, Confidence: 0.9},
		&core.Relationship{SourceId: entities[1].Id, TargetId: entities[0].Id, Type: core.RelationRelatedTo, Confidence: 0.9},
	)
	if err != nil {
		t.Fatalf("Failed to add relationships: %v", err)
	}

	// Cycle must not loop: each node visited exactly once
	walk, err := graphRepo.Traverse(ctx, entities[0].Id, 5)
	if err != nil {
		t.Fatalf("Failed to traverse: %v", err)
	}
	if len(walk) != 2 {
		t.Fatalf("Expected 2 traversal steps, got %d", len(walk))
	}
}

func TestNeighbors(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	_, acme, _, _ := addTestGraph(t, graphRepo)

	// Acme has three incident edges: from alice, to berlin, from bob
	rels, err := graphRepo.Neighbors(ctx, acme.Id)
	if err != nil {
		t.Fatalf("Failed to get neighbors: %v", err)
	}
	if len(rels) != 3 {
		t.Fatalf("Expected 3 relationships, got %d", len(rels))
	}
}

func TestEntityMatchKeyword(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	_, err = graphRepo.AddEntities(ctx,
		&core.Entity{Name: "Acme Corp", Type: core.EntityTypeOrganization,
			Description: "Widget manufacturer", Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
		&core.Entity{Name: "Berlin", Type: core.EntityTypeLocation, Confidence: 0.9,
			SourceFileId: "a.txt", SourceModality: core.ModalityText},
	)
	if err != nil {
		t.Fatalf("Failed to add entities: %v", err)
	}

	// Description text matches too
	entities, err := graphRepo.MatchKeyword(ctx, []string{"widget"}, 10)
	if err != nil {
		t.Fatalf("Failed to match keyword: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("Expected 1 entity, got %d", len(entities))
	}
	if entities[0].Name != "Acme Corp" {
		t.Fatalf("Expected 'Acme Corp', got %q", entities[0].Name)
	}
}

func TestGraphCounts(t *testing.T) {
	_, graphRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	entities, err := graphRepo.CountEntities(ctx)
	if err != nil {
		t.Fatalf("Failed to count entities: %v", err)
	}
	if entities != 0 {
		t.Fatalf("Expected 0 entities, got %d", entities)
	}

	addTestGraph(t, graphRepo)

	entities, err = graphRepo.CountEntities(ctx)
	if err != nil {
		t.Fatalf("Failed to count entities: %v", err)
	}
	if entities != 4 {
		t.Fatalf("Expected 4 entities, got %d", entities)
	}

	relationships, err := graphRepo.CountRelationships(ctx)
	if err != nil {
		t.Fatalf("Failed to count relationships: %v", err)
	}
	if relationships != 3 {
		t.Fatalf("Expected 3 relationships, got %d", relationships)
	}
}
