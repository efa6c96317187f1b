// Package reembed regenerates embedding vectors for chunks already in
// storage, typically after switching to a new embedding model.
//
// Chunks are processed in batches with retry and exponential backoff on
// embedding failures. Progress is checkpointed after each batch so an
// interrupted run resumes where it left off.
package reembed
