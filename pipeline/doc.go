// Package pipeline implements the query processing pipeline: input
// validation, LLM-backed triage and rewriting, concurrent retrieval via
// the search orchestrator, grounded answer synthesis with citations,
// and confidence scoring with explicit degradation warnings.
package pipeline
