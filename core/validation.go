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


package core

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Query length bounds, in characters, measured on the normalized query.
const (
	MinQueryLength = 3
	MaxQueryLength = 1000
)

// NormalizeQuery sanitizes a raw query string: strips control characters
// and collapses runs of whitespace into single spaces.
func NormalizeQuery(query string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, query)
	return strings.Join(strings.Fields(cleaned), " ")
}

// ValidateQuery normalizes the raw query and enforces length bounds.
// Returns the normalized query on success. All failures wrap
// ErrInvalidQuery and are fatal: the caller must not perform retrieval.
func ValidateQuery(query string) (string, error) {
	normalized := NormalizeQuery(query)

	if normalized == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidQuery, ErrQueryEmpty)
	}
	// Bounds are in characters, not bytes, so multi-byte scripts get the
	// same budget as ASCII.
	length := utf8.RuneCountInString(normalized)
	if length < MinQueryLength {
		return "", fmt.Errorf("%w: %w (%d characters, minimum %d)",
			ErrInvalidQuery, ErrQueryTooShort, length, MinQueryLength)
	}
	if length > MaxQueryLength {
		return "", fmt.Errorf("%w: %w (%d characters, maximum %d)",
			ErrInvalidQuery, ErrQueryTooLong, length, MaxQueryLength)
	}

	return normalized, nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Modality must be valid
//   - FileId must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - ID (derived from ChunkKey at insert)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if chunk.FileId == "" {
		return fmt.Errorf("%w: file id is required", ErrInvalidChunk)
	}
	if err := ValidateModality(chunk.Modality); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}
	return nil
}

// ValidateEntity validates an Entity according to domain rules.
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}
	if NormalizeEntityName(entity.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyContent)
	}
	if !slices.Contains(EntityTypes, entity.Type) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntity, ErrInvalidEntityType, entity.Type)
	}
	if entity.Confidence < 0 || entity.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrInvalidConfidence)
	}
	if entity.SourceModality != "" {
		if err := ValidateModality(entity.SourceModality); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
		}
	}
	return nil
}

// ValidateRelationship validates a Relationship according to domain rules.
func ValidateRelationship(rel *Relationship) error {
	if rel == nil {
		return fmt.Errorf("%w: relationship is nil", ErrInvalidRelationship)
	}
	if rel.SourceId == 0 || rel.TargetId == 0 {
		return fmt.Errorf("%w: source and target entity ids are required", ErrInvalidRelationship)
	}
	if !slices.Contains(RelationTypes, rel.Type) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRelationship, ErrInvalidRelationType, rel.Type)
	}
	if rel.Confidence < 0 || rel.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, ErrInvalidConfidence)
	}
	return nil
}

// ValidateModality validates that a Modality has a known value.
func ValidateModality(modality Modality) error {
	if !slices.Contains(Modalities, modality) {
		return fmt.Errorf("%w: %q", ErrInvalidModality, modality)
	}
	return nil
}
