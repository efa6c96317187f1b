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
	"log/slog"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

// Triage classifies a validated query and decides which retrieval
// strategies to run. Classification failure is non-fatal: the query is
// treated as exploratory and answered by vector search alone.
type Triage struct {
	classifier ai.Classifier
	logger     *slog.Logger
}

// NewTriage creates a triage stage.
func NewTriage(classifier ai.Classifier, logger *slog.Logger) *Triage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Triage{classifier: classifier, logger: logger}
}

// Analyze classifies the query and fills in strategy flags. The
// returned analysis always enables at least vector search, so a
// retrieval round can always run.
func (t *Triage) Analyze(ctx context.Context, query string) *core.QueryAnalysis {
	analysis := &core.QueryAnalysis{
		OriginalQuery: query,
		QueryType:     core.QueryTypeExploratory,
		UseVector:     true,
	}

	classification, err := t.classifier.ClassifyQuery(ctx, query)
	if err != nil {
		t.logger.Warn("query classification failed, treating as exploratory",
			"query", query, "err", err)
		return analysis
	}

	if classification.QueryType != "" {
		analysis.QueryType = core.QueryType(classification.QueryType)
	}
	analysis.Entities = classification.Entities
	analysis.Keywords = classification.Keywords
	for _, modality := range classification.Modalities {
		analysis.Modalities = append(analysis.Modalities, core.Modality(modality))
	}

	analysis.UseGraph = len(analysis.Entities) > 0
	analysis.UseKeyword = hasQuotedTerms(query) || len(analysis.Entities) == 0

	return analysis
}

// hasQuotedTerms reports whether the query contains a non-empty
// double-quoted phrase, signaling the user wants literal matching.
// Apostrophes don't count: contractions are not quotations.
func hasQuotedTerms(query string) bool {
	open := strings.IndexByte(query, '"')
	if open == -1 {
		return false
	}
	closing := strings.IndexByte(query[open+1:], '"')
	if closing == -1 {
		return false
	}
	return strings.TrimSpace(query[open+1:open+1+closing]) != ""
}
