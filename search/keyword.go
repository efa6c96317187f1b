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

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

const (
	// DefaultKeywordLimit is the maximum number of keyword candidates
	// fetched from storage per query.
	DefaultKeywordLimit = 50

	// Raw scores for exact keyword matching: full when every term
	// appears, partial otherwise.
	keywordFullScore    = 1.0
	keywordPartialScore = 0.5
)

// KeywordStrategy retrieves chunks and entities by exact term matching.
// A candidate containing every search term scores 1.0; a candidate
// containing only some of them scores 0.5.
type KeywordStrategy struct {
	chunkRepository storage.ChunkRepository
	graphRepository storage.GraphRepository
	limit           int
}

var _ Strategy = (*KeywordStrategy)(nil)

// NewKeywordStrategy creates an exact-match keyword strategy.
func NewKeywordStrategy(chunkRepository storage.ChunkRepository, graphRepository storage.GraphRepository) *KeywordStrategy {
	return &KeywordStrategy{
		chunkRepository: chunkRepository,
		graphRepository: graphRepository,
		limit:           DefaultKeywordLimit,
	}
}

// Source implements Strategy.
func (s *KeywordStrategy) Source() core.StrategySource {
	return core.SourceKeyword
}

// Search matches the triaged keywords against chunk text and entity
// names. When triage extracted no keywords, the filtered tokens of the
// effective query are used instead.
func (s *KeywordStrategy) Search(ctx context.Context, analysis *core.QueryAnalysis) ([]*core.SearchResult, error) {
	tokens := analysis.Keywords
	if len(tokens) == 0 {
		tokens = tokenizeAndFilter(analysis.EffectiveQuery())
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	chunks, err := s.chunkRepository.MatchKeyword(ctx, tokens, s.limit)
	if err != nil {
		return nil, err
	}

	var results []*core.SearchResult
	for _, chunk := range chunks {
		results = append(results, &core.SearchResult{
			Source:     core.SourceKeyword,
			Text:       chunk.Text,
			ChunkId:    chunk.Id,
			RawScore:   keywordScore(chunk.Text, tokens),
			Modality:   chunk.Modality,
			FileId:     chunk.FileId,
			FileName:   chunk.FileName,
			ChunkIndex: chunk.ChunkIndex,
		})
	}

	entities, err := s.graphRepository.MatchKeyword(ctx, tokens, s.limit)
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		text := entityText(entity)
		results = append(results, &core.SearchResult{
			Source:   core.SourceKeyword,
			Text:     text,
			EntityId: entity.Id,
			RawScore: keywordScore(text, tokens),
			Modality: entity.SourceModality,
			FileId:   entity.SourceFileId,
		})
	}
	return results, nil
}

func keywordScore(text string, tokens []string) float32 {
	if matchFraction(text, tokens) >= 1 {
		return keywordFullScore
	}
	return keywordPartialScore
}
