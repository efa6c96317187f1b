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
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// DefaultRetrievalTimeout bounds a full retrieval round across all
// strategies.
const DefaultRetrievalTimeout = 5000 * time.Millisecond

// Retrieval is the outcome of one retrieval round: the ranked results
// plus which strategies ran and which failed. A round degrades rather
// than fails when at least one strategy succeeds.
type Retrieval struct {
	Results []*core.SearchResult
	Ran     []core.StrategySource
	Failed  []core.StrategySource

	// PerStrategy counts pre-merge hits per strategy that ran.
	PerStrategy map[core.StrategySource]int
}

// Orchestrator fans a triaged query out to the enabled retrieval
// strategies concurrently, then merges their hits into one ranked list.
type Orchestrator struct {
	vector  *VectorStrategy
	graph   *GraphStrategy
	keyword *KeywordStrategy

	pool    *ants.Pool
	weights Weights
	limit   int
	timeout time.Duration
	logger  *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithWeights overrides the strategy ranking weights.
func WithWeights(weights Weights) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.weights = weights
		return nil
	}
}

// WithResultLimit overrides the maximum number of ranked results.
func WithResultLimit(limit int) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.limit = limit
		return nil
	}
}

// WithTimeout overrides the retrieval round timeout.
func WithTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.timeout = timeout
		return nil
	}
}

// WithSimilarityThreshold overrides the vector strategy's minimum cosine
// similarity. Default is DefaultSimilarityThreshold.
func WithSimilarityThreshold(threshold float32) OrchestratorOption {
	return func(o *Orchestrator) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		o.vector.threshold = threshold
		return nil
	}
}

// WithTraversalDepth overrides how many hops the graph strategy walks
// from each matched entity. Default is DefaultTraversalDepth.
func WithTraversalDepth(depth int) OrchestratorOption {
	return func(o *Orchestrator) error {
		if depth < 1 {
			return ErrInvalidDepth
		}
		o.graph.maxDepth = depth
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the standard three
// strategies.
func NewOrchestrator(
	chunkRepository storage.ChunkRepository,
	graphRepository storage.GraphRepository,
	provider ai.AIProvider,
	opts ...OrchestratorOption,
) (*Orchestrator, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if graphRepository == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// One worker per strategy; a round never runs more in parallel.
	pool, err := ants.NewPool(3)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		vector:  NewVectorStrategy(chunkRepository, provider.Embedder()),
		graph:   NewGraphStrategy(graphRepository),
		keyword: NewKeywordStrategy(chunkRepository, graphRepository),
		pool:    pool,
		weights: DefaultWeights(),
		limit:   DefaultResultLimit,
		timeout: DefaultRetrievalTimeout,
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(o); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return o, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() error {
	o.pool.Release()
	return nil
}

// Retrieve runs the enabled strategies concurrently and merges their
// hits. Individual strategy failures degrade the round; only all
// strategies failing is an error, and even then the returned Retrieval
// carries the Failed list.
func (o *Orchestrator) Retrieve(ctx context.Context, analysis *core.QueryAnalysis) (*Retrieval, error) {
	return o.RetrieveWithMonitor(ctx, analysis, nil)
}

// RetrieveWithMonitor runs a retrieval round with monitoring.
// The monitor receives callbacks as each strategy finishes.
func (o *Orchestrator) RetrieveWithMonitor(ctx context.Context, analysis *core.QueryAnalysis, monitor SearchMonitor) (*Retrieval, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	strategies := o.enabled(analysis)
	if len(strategies) == 0 {
		return nil, ErrNoStrategiesEnabled
	}

	monitor.Start(analysis)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		results []*core.SearchResult
		err     error
	}
	outcomes := make([]outcome, len(strategies))

	var wg sync.WaitGroup
	for i, strategy := range strategies {
		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			results, err := strategy.Search(ctx, analysis)
			outcomes[i] = outcome{results: results, err: err}
		})
		if submitErr != nil {
			outcomes[i] = outcome{err: submitErr}
			wg.Done()
		}
	}
	wg.Wait()

	retrieval := &Retrieval{
		PerStrategy: make(map[core.StrategySource]int, len(strategies)),
	}
	byStrategy := make(map[core.StrategySource][]*core.SearchResult, len(strategies))
	for i, strategy := range strategies {
		source := strategy.Source()
		if outcomes[i].err != nil {
			o.logger.Warn("retrieval strategy failed",
				"strategy", source, "err", outcomes[i].err)
			monitor.StrategyFailed(source, outcomes[i].err)
			retrieval.Failed = append(retrieval.Failed, source)
			continue
		}
		monitor.StrategyFinished(source, outcomes[i].results)
		retrieval.Ran = append(retrieval.Ran, source)
		retrieval.PerStrategy[source] = len(outcomes[i].results)
		byStrategy[source] = outcomes[i].results
	}

	if len(retrieval.Ran) == 0 {
		// The populated Failed list still goes back so callers can name
		// the unavailable strategies.
		return retrieval, ErrAllStrategiesFailed
	}

	retrieval.Results = MergeAndRank(byStrategy, o.weights, o.limit)
	monitor.Finish(retrieval.Results)

	o.logger.Debug("retrieval round complete",
		"ran", retrieval.Ran, "failed", retrieval.Failed,
		"results", len(retrieval.Results))
	return retrieval, nil
}

// enabled returns the strategies flagged on by triage, in canonical
// order.
func (o *Orchestrator) enabled(analysis *core.QueryAnalysis) []Strategy {
	var strategies []Strategy
	if analysis.UseVector {
		strategies = append(strategies, o.vector)
	}
	if analysis.UseGraph {
		strategies = append(strategies, o.graph)
	}
	if analysis.UseKeyword {
		strategies = append(strategies, o.keyword)
	}
	return strategies
}
