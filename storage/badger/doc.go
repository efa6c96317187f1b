// Package badger provides BadgerDB-backed implementations of the storage
// repository interfaces. Chunks, entities, and relationships are stored
// as MUS-serialized records under typed key prefixes, with secondary
// indexes for file membership, entity identity keys, and relationship
// adjacency.
package badger
