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
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// GraphRepository implements storage.GraphRepository backed by BadgerDB.
// Entities merge by deterministic name+type key, and relationships keep
// an adjacency index on both endpoints so traversal is a prefix scan.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a graph repository using the given backend.
func NewGraphRepository(backend *Backend) *GraphRepository {
	return &GraphRepository{backend: backend}
}

// WithTransaction implements storage.Repository.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close implements storage.Repository. The backend is shared across
// repositories, so closing it here is a no-op; close the backend instead.
func (r *GraphRepository) Close() error {
	return nil
}

// AddEntities adds entities, merging by identity key. A re-added entity
// keeps the stored record unless the new observation has a higher
// confidence, in which case the record is replaced.
func (r *GraphRepository) AddEntities(ctx context.Context, entities ...*core.Entity) ([]*core.Entity, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	now := time.Now()
	merged := make([]*core.Entity, 0, len(entities))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			if err := core.ValidateEntity(entity); err != nil {
				return err
			}
			entity.Id = core.IDFromContent(entity.Key())
			if entity.InsertedAt.IsZero() {
				entity.InsertedAt = now
			}

			existing, err := readEntity(tx, entity.Id)
			if err != nil && err != storage.ErrNotFound {
				return err
			}
			if existing != nil && existing.Confidence >= entity.Confidence {
				merged = append(merged, existing)
				continue
			}

			if err := tx.Set(makeEntityRecordKey(entity.Id), storage.MarshalEntity(entity)); err != nil {
				return err
			}
			if err := tx.Set(makeEntityKeyIndexKey(entity.Key()), idToValue(entity.Id)); err != nil {
				return err
			}
			merged = append(merged, entity)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// AddRelationships adds relationships and maintains the adjacency index.
// Both endpoints must already exist.
func (r *GraphRepository) AddRelationships(ctx context.Context, rels ...*core.Relationship) ([]*core.Relationship, error) {
	if len(rels) == 0 {
		return nil, nil
	}

	now := time.Now()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, rel := range rels {
			if err := core.ValidateRelationship(rel); err != nil {
				return err
			}
			for _, endpoint := range []core.ID{rel.SourceId, rel.TargetId} {
				if _, err := tx.Get(makeEntityRecordKey(endpoint)); err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				} else if err != nil {
					return err
				}
			}

			rel.Id = core.IDFromContent(core.RelationshipKey(rel.SourceId, rel.TargetId, rel.Type))
			if rel.InsertedAt.IsZero() {
				rel.InsertedAt = now
			}

			if err := tx.Set(makeRelationRecordKey(rel.Id), storage.MarshalRelationship(rel)); err != nil {
				return err
			}
			if err := tx.Set(makeRelationAdjacentKey(rel.SourceId, rel.Id), nil); err != nil {
				return err
			}
			if err := tx.Set(makeRelationAdjacentKey(rel.TargetId, rel.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// GetEntity retrieves a single entity by ID.
func (r *GraphRepository) GetEntity(ctx context.Context, id core.ID) (*core.Entity, error) {
	var entity *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entity, err = readEntity(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// FindEntityByName finds an entity by exact normalized-name match,
// trying each entity type in declaration order.
func (r *GraphRepository) FindEntityByName(ctx context.Context, name string) (*core.Entity, error) {
	var entity *core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entityType := range core.EntityTypes {
			item, err := tx.Get(makeEntityKeyIndexKey(core.EntityKey(name, entityType)))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var entityId core.ID
			err = item.Value(func(value []byte) error {
				entityId = idFromValue(value)
				return nil
			})
			if err != nil {
				return err
			}
			entity, err = readEntity(tx, entityId)
			return err
		}
		return storage.ErrNotFound
	}, false)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Traverse walks relationship edges breadth-first from startId up to
// maxDepth. The start entity is reported at depth 1 with a nil
// relationship; each discovered neighbor is reported once, at the depth
// it was first reached, with the relationship it was reached through.
func (r *GraphRepository) Traverse(ctx context.Context, startId core.ID, maxDepth int) ([]*storage.Traversal, error) {
	if maxDepth < 1 {
		return nil, nil
	}

	var walk []*storage.Traversal
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		start, err := readEntity(tx, startId)
		if err != nil {
			return err
		}

		visited := map[core.ID]bool{startId: true}
		walk = append(walk, &storage.Traversal{Entity: start, Depth: 1})

		frontier := []core.ID{startId}
		for depth := 2; depth <= maxDepth && len(frontier) > 0; depth++ {
			var next []core.ID
			for _, entityId := range frontier {
				if err := ctx.Err(); err != nil {
					return err
				}
				rels, err := readAdjacent(tx, entityId)
				if err != nil {
					return err
				}
				for _, rel := range rels {
					neighborId := rel.TargetId
					if neighborId == entityId {
						neighborId = rel.SourceId
					}
					if visited[neighborId] {
						continue
					}
					visited[neighborId] = true

					neighbor, err := readEntity(tx, neighborId)
					if err == storage.ErrNotFound {
						continue
					}
					if err != nil {
						return err
					}
					walk = append(walk, &storage.Traversal{
						Entity:       neighbor,
						Relationship: rel,
						Depth:        depth,
					})
					next = append(next, neighborId)
				}
			}
			frontier = next
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return walk, nil
}

// Neighbors returns the relationships incident to an entity, in both
// directions.
func (r *GraphRepository) Neighbors(ctx context.Context, id core.ID) ([]*core.Relationship, error) {
	var rels []*core.Relationship
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		rels, err = readAdjacent(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// MatchKeyword finds entities whose name or description contains any of
// the given tokens, case-insensitively.
func (r *GraphRepository) MatchKeyword(ctx context.Context, tokens []string, limit int) ([]*core.Entity, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(tokens))
	for i, token := range tokens {
		lowered[i] = strings.ToLower(token)
	}

	var entities []*core.Entity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entityRecordPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entity *core.Entity
			err := it.Item().Value(func(value []byte) error {
				var err error
				entity, err = storage.UnmarshalEntity(value)
				return err
			})
			if err != nil {
				return err
			}

			haystack := strings.ToLower(entity.Name + " " + entity.Description)
			for _, token := range lowered {
				if strings.Contains(haystack, token) {
					entities = append(entities, entity)
					break
				}
			}
			if limit > 0 && len(entities) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func readEntity(tx *badger.Txn, id core.ID) (*core.Entity, error) {
	item, err := tx.Get(makeEntityRecordKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var entity *core.Entity
	err = item.Value(func(value []byte) error {
		entity, err = storage.UnmarshalEntity(value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func readAdjacent(tx *badger.Txn, entityId core.ID) ([]*core.Relationship, error) {
	var rels []*core.Relationship
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeRelationAdjacentPrefix(entityId)
	opts.PrefetchValues = false
	it := tx.NewIterator(opts)
	defer it.Close()

	prefixLen := len(makeRelationAdjacentPrefix(entityId))
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		relId := idFromValue(key[prefixLen:])
		rel, err := readRelationship(tx, relId)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func readRelationship(tx *badger.Txn, id core.ID) (*core.Relationship, error) {
	item, err := tx.Get(makeRelationRecordKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rel *core.Relationship
	err = item.Value(func(value []byte) error {
		rel, err = storage.UnmarshalRelationship(value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// CountEntities returns the number of stored entities.
func (r *GraphRepository) CountEntities(ctx context.Context) (int, error) {
	return r.backend.countKeys(ctx, []byte(entityRecordPrefix))
}

// CountRelationships returns the number of stored relationships.
func (r *GraphRepository) CountRelationships(ctx context.Context) (int, error) {
	return r.backend.countKeys(ctx, []byte(relationRecordPrefix))
}
