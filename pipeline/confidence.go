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
	"slices"
	"strings"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/search"
)

// Confidence tiers.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"

	highThreshold   = 0.7
	mediumThreshold = 0.4

	// degradedScale discounts confidence when an enabled strategy came
	// back empty; insufficiencyCap bounds it when the answer itself says
	// the context was not enough.
	degradedScale    = 0.9
	insufficiencyCap = 0.3
)

// confidenceInput gathers everything the score depends on.
type confidenceInput struct {
	cited         []core.SearchResult
	available     int
	retrieval     *search.Retrieval
	insufficiency bool
	generationOK  bool
	modalities    []core.Modality
}

// scoreConfidence computes the answer confidence: citation quality
// weighted against citation coverage, discounted for degraded
// retrieval. No results at all means zero confidence.
func scoreConfidence(input confidenceInput) float32 {
	if input.available == 0 || !input.generationOK || len(input.cited) == 0 {
		return 0
	}

	var sum float32
	for _, result := range input.cited {
		sum += result.WeightedScore
	}
	mean := sum / float32(len(input.cited))
	coverage := float32(len(input.cited)) / float32(input.available)

	confidence := 0.7*mean + 0.3*coverage

	if retrievalDegraded(input.retrieval) {
		confidence *= degradedScale
	}
	if input.insufficiency && confidence > insufficiencyCap {
		confidence = insufficiencyCap
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// retrievalDegraded reports whether any enabled strategy failed or
// returned nothing.
func retrievalDegraded(retrieval *search.Retrieval) bool {
	if retrieval == nil {
		return true
	}
	if len(retrieval.Failed) > 0 {
		return true
	}
	for _, source := range retrieval.Ran {
		if retrieval.PerStrategy[source] == 0 {
			return true
		}
	}
	return false
}

// ConfidenceTier maps a confidence value to its reporting tier.
func ConfidenceTier(confidence float32) string {
	switch {
	case confidence >= highThreshold:
		return TierHigh
	case confidence >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// buildWarning assembles the user-facing degradation notice. Empty when
// nothing degraded.
func buildWarning(input confidenceInput, confidence float32) string {
	var warnings []string

	if input.retrieval != nil && len(input.retrieval.Failed) > 0 {
		names := make([]string, len(input.retrieval.Failed))
		for i, source := range input.retrieval.Failed {
			names[i] = strings.ToLower(string(source))
		}
		warnings = append(warnings, "retrieval strategies unavailable: "+strings.Join(names, ", "))
	}
	if input.available == 0 {
		warnings = append(warnings, "no results found by any retrieval strategy")
	}
	if input.available > 0 && !input.generationOK {
		warnings = append(warnings, "answer generation failed")
	}
	if missing := missingModalities(input); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, modality := range missing {
			names[i] = string(modality)
		}
		warnings = append(warnings, "no results from requested modalities: "+strings.Join(names, ", "))
	}
	if input.available > 0 && input.generationOK && ConfidenceTier(confidence) == TierLow {
		warnings = append(warnings, "low confidence answer")
	}

	return strings.Join(warnings, "; ")
}

// missingModalities returns requested modalities absent from the ranked
// result set.
func missingModalities(input confidenceInput) []core.Modality {
	if len(input.modalities) == 0 || input.retrieval == nil || len(input.retrieval.Results) == 0 {
		return nil
	}
	var missing []core.Modality
	for _, modality := range input.modalities {
		found := slices.ContainsFunc(input.retrieval.Results, func(result *core.SearchResult) bool {
			return result.Modality == modality
		})
		if !found {
			missing = append(missing, modality)
		}
	}
	return missing
}
