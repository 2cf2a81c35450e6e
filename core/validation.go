// Copyright 2025 Slateworks
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

import "fmt"

// ValidateEquipment validates an Equipment according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - TenantId must not be empty
//
// NOT validated:
//   - ID (0 is valid before the repository assigns one)
func ValidateEquipment(equipment *Equipment) error {
	if equipment == nil {
		return fmt.Errorf("%w: equipment is nil", ErrInvalidEquipment)
	}

	if equipment.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEquipment, ErrEmptyName)
	}

	if equipment.TenantId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEquipment, ErrEmptyTenant)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - EquipmentId must be set
//   - TenantId must not be empty
//   - FileName must not be empty
//   - EmbeddingStatus must be a known value
//
// NOT validated:
//   - ID (0 is valid before the repository assigns one)
//   - EmbeddingError (only set on failed documents)
func ValidateDocument(document *Document) error {
	if document == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if document.EquipmentId == 0 {
		return fmt.Errorf("%w: equipment id required", ErrInvalidDocument)
	}

	if document.TenantId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTenant)
	}

	if document.FileName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFileName)
	}

	if err := ValidateEmbeddingStatus(document.EmbeddingStatus); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentId must be set
//   - ChunkId must not be empty
//   - ChunkIndex must not be negative
//   - Text must not be empty
//
// NOT validated:
//   - Embedding (set by the ingestor before persistence, but re-embedding
//     tooling may handle chunks whose vectors are being replaced)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: document id required", ErrInvalidChunk)
	}

	if chunk.ChunkId == "" {
		return fmt.Errorf("%w: chunk id required", ErrInvalidChunk)
	}

	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	return nil
}

// ValidateEmbeddingStatus validates that an EmbeddingStatus has a known value.
func ValidateEmbeddingStatus(status EmbeddingStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}
