package storage

import (
	"context"

	"github.com/slateworks/equipkb/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// EquipmentRepository provides operations for managing equipment records.
type EquipmentRepository interface {
	Repository

	// AddEquipment adds a new equipment record. Generates an ID from
	// sequence and sets timestamps. Returns ErrDuplicateKey if equipment
	// with the same name already exists for the tenant.
	AddEquipment(ctx context.Context, equipment *core.Equipment) (*core.Equipment, error)

	// GetEquipment retrieves a single equipment record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetEquipment(ctx context.Context, id core.ID) (*core.Equipment, error)

	// ListEquipment retrieves all equipment records, optionally scoped to a
	// tenant (empty tenantID = all tenants).
	ListEquipment(ctx context.Context, tenantID string) ([]*core.Equipment, error)
}

// DocumentRepository provides operations for managing document records.
// The embedding status field moves only forward; implementations reject
// illegal transitions with ErrIllegalTransition.
type DocumentRepository interface {
	Repository

	// AddDocument adds a new document record. Generates an ID from sequence
	// and sets timestamps. Returns the record with ID populated.
	AddDocument(ctx context.Context, document *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocumentsByEquipment retrieves all document records under an
	// equipment, in insertion order.
	ListDocumentsByEquipment(ctx context.Context, equipmentID core.ID) ([]*core.Document, error)

	// ListDocumentsByStatus retrieves all document records currently in the
	// given embedding status.
	ListDocumentsByStatus(ctx context.Context, status core.EmbeddingStatus) ([]*core.Document, error)

	// UpdateStatus transitions a document's embedding status, updating the
	// UpdatedAt timestamp and, for failures, recording the structured
	// embedding error. Returns ErrNotFound if the document doesn't exist and
	// ErrIllegalTransition if the transition is not a legal forward move.
	UpdateStatus(ctx context.Context, id core.ID, status core.EmbeddingStatus, embErr *core.EmbeddingError) (*core.Document, error)
}

// ChunkRepository provides operations for managing chunk records and
// similarity search over their embeddings.
type ChunkRepository interface {
	Repository

	// AddChunks persists a document's chunk set as a single batch write.
	// A document's chunks are written exactly once, at ingestion time.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunksByDocument retrieves all chunks of a document ordered by
	// chunk index.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// SetDisabled flips the soft-delete flag on all chunks of a document.
	SetDisabled(ctx context.Context, documentID core.ID, disabled bool) error

	// UpdateChunks overwrites existing chunk records, keyed by chunk id.
	// Used by re-embedding maintenance; returns ErrNotFound if a chunk
	// doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) error

	// FindSimilar finds chunks similar to the given vector, restricted to
	// chunks matching every entry of the filter. It gathers up to
	// numCandidates candidates before ranking by similarity (highest first)
	// and truncating to limit.
	FindSimilar(ctx context.Context, vector []float32, filter Filter, limit, numCandidates int) ([]*ScoredChunk, error)
}

// ScoredChunk pairs a chunk with its similarity score from vector search.
type ScoredChunk struct {
	Chunk *core.Chunk
	Score float32
}
