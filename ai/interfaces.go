package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier analyzes a user query under a fixed output schema.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// ClassifyQuery determines the query type and extracts entities,
	// keywords, and expected modalities from the query text.
	// Returns an error if classification fails; callers treat failure
	// as non-fatal and fall back to defaults.
	ClassifyQuery(ctx context.Context, query string) (*QueryClassification, error)
}

// Generator produces grounded text completions.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateText generates a completion for the given system and user
	// prompts. Returns an error if generation fails.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// QueryClassification is the structured output of query classification.
type QueryClassification struct {
	// QueryType is one of the values in QueryTypeNames.
	QueryType string

	// Entities holds names of specific entities mentioned in the query
	// (people, organizations, locations, products, concepts).
	Entities []string

	// Keywords holds meaningful lexical terms extracted from the query.
	Keywords []string

	// Modalities holds the content modalities the query expects
	// ("text", "image", "audio", "video"). Empty means no restriction.
	Modalities []string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Classifier, and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Classifier returns the query classification service.
	// The returned Classifier is safe for concurrent use.
	Classifier() Classifier

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
