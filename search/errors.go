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

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrGraphRepositoryRequired is returned when a graph repository is not provided.
	ErrGraphRepositoryRequired = errors.New("graph repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoStrategiesEnabled is returned when a query analysis enables no
	// retrieval strategies.
	ErrNoStrategiesEnabled = errors.New("no retrieval strategies enabled")

	// ErrAllStrategiesFailed is returned when every enabled strategy
	// returned an error.
	ErrAllStrategiesFailed = errors.New("all retrieval strategies failed")

	// ErrInvalidThreshold is returned for a similarity threshold outside [0,1].
	ErrInvalidThreshold = errors.New("similarity threshold must be between 0 and 1")

	// ErrInvalidDepth is returned for a traversal depth below 1.
	ErrInvalidDepth = errors.New("traversal depth must be at least 1")
)
