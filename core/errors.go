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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuery indicates a raw query failed validation.
	// No retrieval is performed for invalid queries.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrQueryEmpty indicates the query is empty or whitespace-only.
	ErrQueryEmpty = errors.New("query cannot be empty")

	// ErrQueryTooShort indicates the query is below the minimum length.
	ErrQueryTooShort = errors.New("query too short")

	// ErrQueryTooLong indicates the query exceeds the maximum length.
	ErrQueryTooLong = errors.New("query too long")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidEntity indicates an Entity failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidRelationship indicates a Relationship failed validation.
	ErrInvalidRelationship = errors.New("invalid relationship")

	// ErrEmptyContent indicates a text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidModality indicates an unknown modality value.
	ErrInvalidModality = errors.New("invalid modality")

	// ErrInvalidEntityType indicates an unknown entity type value.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidRelationType indicates an unknown relationship type value.
	ErrInvalidRelationType = errors.New("invalid relationship type")

	// ErrInvalidConfidence indicates a confidence value outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)
