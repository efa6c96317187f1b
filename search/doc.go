// Package search implements multi-strategy retrieval over the ingested
// corpus: vector similarity, knowledge-graph traversal, and exact
// keyword matching run concurrently, and their hits merge into a single
// deterministically ranked list.
package search
