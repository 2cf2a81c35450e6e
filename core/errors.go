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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEquipment indicates an Equipment failed validation.
	ErrInvalidEquipment = errors.New("invalid equipment")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyName indicates a required name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyTenant indicates the tenant id field is empty.
	ErrEmptyTenant = errors.New("tenant id cannot be empty")

	// ErrEmptyFileName indicates the file name field is empty.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrEmptyText indicates the chunk text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrNegativeIndex indicates a chunk index is negative.
	ErrNegativeIndex = errors.New("chunk index cannot be negative")

	// ErrInvalidStatus indicates an invalid EmbeddingStatus value.
	ErrInvalidStatus = errors.New("invalid embedding status")
)
