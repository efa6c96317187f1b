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

package search

import (
	"context"
	"errors"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// DefaultTraversalDepth is how many hops a graph search walks from each
// matched entity.
const DefaultTraversalDepth = 3

// GraphStrategy retrieves entities by walking the knowledge graph from
// the entities extracted during triage. A directly matched entity scores
// 1.0; each hop away divides the score by the depth, so relevance decays
// strictly with distance.
type GraphStrategy struct {
	graphRepository storage.GraphRepository
	maxDepth        int
}

var _ Strategy = (*GraphStrategy)(nil)

// NewGraphStrategy creates a graph traversal strategy.
func NewGraphStrategy(graphRepository storage.GraphRepository) *GraphStrategy {
	return &GraphStrategy{
		graphRepository: graphRepository,
		maxDepth:        DefaultTraversalDepth,
	}
}

// Source implements Strategy.
func (s *GraphStrategy) Source() core.StrategySource {
	return core.SourceGraph
}

// Search resolves each extracted entity by exact normalized-name match
// and traverses outward. Unresolvable entities are skipped; an entity
// reached from several starts keeps its best (shallowest) score.
func (s *GraphStrategy) Search(ctx context.Context, analysis *core.QueryAnalysis) ([]*core.SearchResult, error) {
	best := make(map[core.ID]*core.SearchResult)
	order := make([]core.ID, 0)

	for _, name := range analysis.Entities {
		entity, err := s.graphRepository.FindEntityByName(ctx, name)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		walk, err := s.graphRepository.Traverse(ctx, entity.Id, s.maxDepth)
		if err != nil {
			return nil, err
		}

		for _, step := range walk {
			score := float32(1) / float32(step.Depth)
			if existing, ok := best[step.Entity.Id]; ok {
				if score > existing.RawScore {
					existing.RawScore = score
				}
				continue
			}
			result := &core.SearchResult{
				Source:   core.SourceGraph,
				Text:     entityText(step.Entity),
				EntityId: step.Entity.Id,
				RawScore: score,
				Modality: step.Entity.SourceModality,
				FileId:   step.Entity.SourceFileId,
			}
			best[step.Entity.Id] = result
			order = append(order, step.Entity.Id)
		}
	}

	results := make([]*core.SearchResult, 0, len(order))
	for _, id := range order {
		results = append(results, best[id])
	}
	return results, nil
}

func entityText(entity *core.Entity) string {
	if entity.Description != "" {
		return entity.Name + ": " + entity.Description
	}
	return entity.Name
}
