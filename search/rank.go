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
	"slices"
	"strings"

	"github.com/poiesic/askit/core"
)

const (
	// DefaultResultLimit is the maximum number of ranked results returned
	// from a retrieval round.
	DefaultResultLimit = 10

	// DuplicateOverlapThreshold is the token-overlap ratio above which two
	// results are considered duplicates.
	DuplicateOverlapThreshold = 0.9
)

// Weights scale the raw score of each strategy into a comparable
// weighted score. Vector similarity is trusted most, then graph
// proximity, then exact keyword matching.
type Weights struct {
	Vector  float32
	Graph   float32
	Keyword float32
}

// DefaultWeights returns the standard strategy weights.
func DefaultWeights() Weights {
	return Weights{Vector: 1.0, Graph: 0.9, Keyword: 0.8}
}

// For returns the weight of a strategy source.
func (w Weights) For(source core.StrategySource) float32 {
	switch source {
	case core.SourceVector:
		return w.Vector
	case core.SourceGraph:
		return w.Graph
	case core.SourceKeyword:
		return w.Keyword
	}
	return 0
}

// MergeAndRank combines per-strategy results into a single ranked list:
// weighted scores are computed, duplicates collapse to their
// highest-scored copy, and the list is truncated to limit.
//
// The merge is deterministic regardless of strategy completion order:
// results are concatenated in fixed strategy order before ranking, and
// ties break by strategy priority and then by text.
func MergeAndRank(byStrategy map[core.StrategySource][]*core.SearchResult, weights Weights, limit int) []*core.SearchResult {
	var combined []*core.SearchResult
	for _, source := range []core.StrategySource{core.SourceVector, core.SourceGraph, core.SourceKeyword} {
		for _, result := range byStrategy[source] {
			result.WeightedScore = result.RawScore * weights.For(result.Source)
			combined = append(combined, result)
		}
	}

	slices.SortStableFunc(combined, compareRanked)

	// The list is sorted best-first, so keeping the first of each
	// duplicate group keeps the highest weighted score. Running the merge
	// on its own output changes nothing.
	deduped := make([]*core.SearchResult, 0, len(combined))
	for _, candidate := range combined {
		if slices.ContainsFunc(deduped, func(kept *core.SearchResult) bool {
			return isDuplicate(kept, candidate)
		}) {
			continue
		}
		deduped = append(deduped, candidate)
	}

	if limit > 0 && len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

func compareRanked(a, b *core.SearchResult) int {
	if a.WeightedScore != b.WeightedScore {
		if a.WeightedScore > b.WeightedScore {
			return -1
		}
		return 1
	}
	if pa, pb := core.StrategyPriority(a.Source), core.StrategyPriority(b.Source); pa != pb {
		return pa - pb
	}
	return strings.Compare(a.Text, b.Text)
}

// isDuplicate reports whether two results refer to the same content:
// the same chunk position in the same file, the same graph entity, or
// near-identical text.
func isDuplicate(a, b *core.SearchResult) bool {
	if a.ChunkId != 0 && b.ChunkId != 0 &&
		a.FileId == b.FileId && a.ChunkIndex == b.ChunkIndex {
		return true
	}
	if a.EntityId != 0 && a.EntityId == b.EntityId {
		return true
	}
	return tokenOverlap(a.Text, b.Text) >= DuplicateOverlapThreshold
}
