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
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/evaluation"
	"github.com/poiesic/askit/search"
)

// noAnswerText is returned when retrieval produced nothing to ground an
// answer on.
const noAnswerText = "No relevant information was found for this query."

// Processor runs a query through the full pipeline: validation, triage,
// rewriting, retrieval, synthesis, and confidence scoring. It holds no
// per-request state; one Processor serves concurrent requests.
//
// Only an invalid query fails a request. Everything downstream degrades
// into a low or zero confidence Answer with a warning.
type Processor struct {
	orchestrator *search.Orchestrator
	triage       *Triage
	rewriter     *Rewriter
	synthesizer  *Synthesizer
	recorder     evaluation.Recorder
	thresholds   evaluation.Thresholds
	logger       *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRecorder sets the evaluation recorder.
// Default discards records.
func WithRecorder(recorder evaluation.Recorder) Option {
	return func(p *Processor) error {
		if recorder == nil {
			recorder = evaluation.NopRecorder{}
		}
		p.recorder = recorder
		return nil
	}
}

// WithThresholds overrides the evaluation thresholds.
func WithThresholds(thresholds evaluation.Thresholds) Option {
	return func(p *Processor) error {
		p.thresholds = thresholds
		return nil
	}
}

// NewProcessor creates a query processor.
func NewProcessor(orchestrator *search.Orchestrator, provider ai.AIProvider, opts ...Option) (*Processor, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Processor{
		orchestrator: orchestrator,
		recorder:     evaluation.NopRecorder{},
		thresholds:   evaluation.DefaultThresholds(),
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.triage = NewTriage(provider.Classifier(), p.logger)
	p.rewriter = NewRewriter(provider.Generator(), p.logger)
	p.synthesizer = NewSynthesizer(provider.Generator(), p.logger)

	return p, nil
}

// Process answers a query. The error is non-nil only for invalid input;
// any retrieval or generation trouble is reported through the Answer's
// confidence and warning instead.
func (p *Processor) Process(ctx context.Context, query string) (*core.Answer, error) {
	started := time.Now()

	normalized, err := core.ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	analysis := p.triage.Analyze(ctx, normalized)
	analysis.RewrittenQuery = p.rewriter.Rewrite(ctx, normalized)

	retrievalStarted := time.Now()
	retrieval, err := p.orchestrator.Retrieve(ctx, analysis)
	retrievalLatency := time.Since(retrievalStarted)
	if err != nil {
		// Keep whatever the orchestrator reported; an all-failed round
		// still names the unavailable strategies in its Failed list.
		p.logger.Warn("retrieval failed", "query", normalized, "err", err)
	}

	input := confidenceInput{
		retrieval:  retrieval,
		modalities: analysis.Modalities,
	}
	if retrieval != nil {
		input.available = len(retrieval.Results)
	}

	answer := &core.Answer{QueryType: analysis.QueryType}

	var generationLatency time.Duration
	if input.available > 0 {
		generationStarted := time.Now()
		text, cited, genErr := p.synthesizer.Synthesize(ctx, analysis.EffectiveQuery(), retrieval.Results)
		generationLatency = time.Since(generationStarted)
		if genErr != nil {
			p.logger.Warn("answer generation failed", "query", normalized, "err", genErr)
			answer.Text = noAnswerText
		} else {
			answer.Text = text
			answer.Sources = cited
			input.cited = cited
			input.generationOK = true
			input.insufficiency = flagsInsufficiency(text)
		}
	} else {
		answer.Text = noAnswerText
	}

	answer.Confidence = scoreConfidence(input)
	answer.Warning = buildWarning(input, answer.Confidence)

	record := evaluation.NewRecord(analysis.QueryType, answer.Confidence,
		time.Since(started), retrievalLatency, generationLatency,
		input.available, p.thresholds)
	p.recorder.Record(record)

	p.logger.Debug("query processed",
		"query_type", analysis.QueryType,
		"results", input.available,
		"cited", len(input.cited),
		"confidence", answer.Confidence,
		"tier", ConfidenceTier(answer.Confidence),
		"total_latency", record.TotalLatency)

	return answer, nil
}
