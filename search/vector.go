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

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

const (
	// DefaultSimilarityThreshold is the minimum cosine similarity for a
	// vector hit.
	DefaultSimilarityThreshold = 0.70

	// DefaultVectorTopK is the maximum number of vector hits per query.
	DefaultVectorTopK = 10
)

// VectorStrategy retrieves chunks by embedding similarity. The raw score
// of a hit is its cosine similarity with the query embedding.
type VectorStrategy struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	threshold       float32
	topK            int
}

var _ Strategy = (*VectorStrategy)(nil)

// NewVectorStrategy creates a vector similarity strategy.
func NewVectorStrategy(chunkRepository storage.ChunkRepository, embedder ai.Embedder) *VectorStrategy {
	return &VectorStrategy{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		threshold:       DefaultSimilarityThreshold,
		topK:            DefaultVectorTopK,
	}
}

// Source implements Strategy.
func (s *VectorStrategy) Source() core.StrategySource {
	return core.SourceVector
}

// Search embeds the effective query and finds the nearest chunks,
// honoring any modality hints from triage.
func (s *VectorStrategy) Search(ctx context.Context, analysis *core.QueryAnalysis) ([]*core.SearchResult, error) {
	embedding, err := s.embedder.EmbedText(ctx, analysis.EffectiveQuery())
	if err != nil {
		return nil, err
	}

	matches, err := s.chunkRepository.FindSimilar(ctx, embedding, s.threshold, s.topK, analysis.Modalities...)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, &core.SearchResult{
			Source:     core.SourceVector,
			Text:       match.Chunk.Text,
			ChunkId:    match.Chunk.Id,
			RawScore:   match.Score,
			Modality:   match.Chunk.Modality,
			FileId:     match.Chunk.FileId,
			FileName:   match.Chunk.FileName,
			ChunkIndex: match.Chunk.ChunkIndex,
		})
	}
	return results, nil
}
