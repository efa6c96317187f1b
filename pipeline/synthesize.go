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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// DefaultContextTokenBudget bounds the retrieved context passed to the
// generator.
const DefaultContextTokenBudget = 3000

var citationPattern = regexp.MustCompile(`\[Source (\d+)\]`)

// Synthesizer turns ranked retrieval results into a grounded, cited
// answer. Context passages are numbered [Source N] and the generated
// text is parsed for those citations to recover which sources the
// answer actually used.
type Synthesizer struct {
	generator ai.Generator
	counter   *tokenCounter
	budget    int
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesis stage.
func NewSynthesizer(generator ai.Generator, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		generator: generator,
		counter:   newTokenCounter(),
		budget:    DefaultContextTokenBudget,
		logger:    logger,
	}
}

// Synthesize generates an answer from the ranked results. It returns
// the answer text and the cited sources in citation order. The results
// must be non-empty; the caller handles the no-results case.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []*core.SearchResult) (string, []core.SearchResult, error) {
	contextText, included := s.buildContext(results)

	userPrompt := "Context passages:\n\n" + contextText + "\nQuestion: " + query
	answer, err := s.generator.GenerateText(ctx, answerSystemPrompt, userPrompt)
	if err != nil {
		return "", nil, err
	}

	cited := citedSources(answer, included)
	return answer, cited, nil
}

// buildContext renders numbered source blocks until the token budget is
// spent, always including at least the top result. Returns the rendered
// context and the results that made it in, in block order.
func (s *Synthesizer) buildContext(results []*core.SearchResult) (string, []*core.SearchResult) {
	var builder strings.Builder
	var included []*core.SearchResult

	spent := 0
	for _, result := range results {
		block := formatSourceBlock(len(included)+1, result)
		cost := s.counter.Count(block)
		if len(included) > 0 && spent+cost > s.budget {
			s.logger.Debug("context budget reached",
				"included", len(included), "dropped", len(results)-len(included))
			break
		}
		builder.WriteString(block)
		included = append(included, result)
		spent += cost
	}
	return builder.String(), included
}

func formatSourceBlock(number int, result *core.SearchResult) string {
	origin := result.FileName
	if origin == "" {
		origin = result.FileId
	}
	return fmt.Sprintf("[Source %d] (%s, %s, %s, score %.2f)\n%s\n\n",
		number, origin, result.Modality, result.Source, result.WeightedScore, result.Text)
}

// citedSources extracts the sources the answer cited, in order of first
// citation. Citations pointing outside the context are ignored.
func citedSources(answer string, included []*core.SearchResult) []core.SearchResult {
	seen := make(map[int]bool)
	var cited []core.SearchResult
	for _, match := range citationPattern.FindAllStringSubmatch(answer, -1) {
		number, err := strconv.Atoi(match[1])
		if err != nil || number < 1 || number > len(included) || seen[number] {
			continue
		}
		seen[number] = true
		cited = append(cited, *included[number-1])
	}
	return cited
}

// flagsInsufficiency reports whether the answer declares that the
// context could not support an answer.
func flagsInsufficiency(answer string) bool {
	return strings.Contains(strings.ToLower(answer), "not enough information")
}
