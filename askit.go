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

// Package askit answers natural-language questions over a multimodal
// corpus. It combines vector, knowledge-graph, and keyword retrieval
// over BadgerDB storage with LLM-backed query triage and grounded
// answer synthesis.
package askit

import (
	"context"
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/evaluation"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/pipeline"
	"github.com/poiesic/askit/search"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
)

// Engine wires storage, the AI provider, retrieval, and the query
// pipeline into one entry point.
type Engine struct {
	backend      *badger.Backend
	chunkRepo    storage.ChunkRepository
	graphRepo    storage.GraphRepository
	provider     ai.AIProvider
	orchestrator *search.Orchestrator
	processor    *pipeline.Processor
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	recorder evaluation.Recorder
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider, bypassing the OpenAI
// provider construction. Intended for tests and embedded use.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithRecorder sets the evaluation recorder for answered queries.
func WithRecorder(recorder evaluation.Recorder) EngineOption {
	return func(o *engineOptions) {
		o.recorder = recorder
	}
}

// WithInMemoryStorage uses an in-memory store instead of a directory.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine opens the store at filePath and wires the full stack.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)
	graphRepo := badger.NewGraphRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	orchestrator, err := search.NewOrchestrator(chunkRepo, graphRepo, provider,
		search.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	processorOpts := []pipeline.Option{pipeline.WithLogger(options.logger)}
	if options.recorder != nil {
		processorOpts = append(processorOpts, pipeline.WithRecorder(options.recorder))
	}
	processor, err := pipeline.NewProcessor(orchestrator, provider, processorOpts...)
	if err != nil {
		orchestrator.Close()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:      backend,
		chunkRepo:    chunkRepo,
		graphRepo:    graphRepo,
		provider:     provider,
		orchestrator: orchestrator,
		processor:    processor,
		logger:       options.logger,
	}, nil
}

// Ask answers a query through the full pipeline.
func (e *Engine) Ask(ctx context.Context, query string) (*core.Answer, error) {
	return e.processor.Process(ctx, query)
}

// ChunkRepository exposes the chunk store.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// GraphRepository exposes the knowledge graph store.
func (e *Engine) GraphRepository() storage.GraphRepository {
	return e.graphRepo
}

// NewIngestPipeline creates an ingestion pipeline over the engine's
// stores and provider.
func (e *Engine) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.chunkRepo, e.graphRepo, e.provider, opts...)
}

// Close releases the pipeline, the AI provider, and storage.
func (e *Engine) Close() error {
	e.orchestrator.Close()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
