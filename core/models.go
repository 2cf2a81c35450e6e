package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences or content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ParseID parses the decimal string form of an ID.
// Returns an error for anything that is not a well-formed identifier.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// String returns the decimal string form of the ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// EmbeddingStatus tracks a document's progress through the embedding pipeline.
// Transitions only move forward: pending -> processing -> {completed, failed}.
type EmbeddingStatus int

const (
	// StatusPending means the document is recorded but processing has not started.
	StatusPending EmbeddingStatus = iota + 1
	// StatusProcessing means extraction/chunking/embedding is underway.
	StatusProcessing
	// StatusCompleted means all surviving chunks were embedded and persisted.
	StatusCompleted
	// StatusFailed means no chunk could be embedded; the document is tombstoned.
	StatusFailed
)

// String returns the lowercase wire name of the status.
func (s EmbeddingStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions.
func (s EmbeddingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal forward
// transition. Same-status updates are not transitions and are rejected.
func (s EmbeddingStatus) CanTransition(next EmbeddingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCompleted || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// EmbeddingError captures why a document's embedding run failed.
type EmbeddingError struct {
	Code         string
	Message      string
	FailedChunks int
}

// Equipment is a tenant-scoped named entity that documents hang off.
// Identity is immutable once created; Name is unique per tenant.
type Equipment struct {
	Id          ID
	Name        string
	Description string
	TenantId    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Document represents one uploaded source file under an Equipment.
type Document struct {
	Id              ID
	EquipmentId     ID
	TenantId        string
	FileName        string
	ContentType     string
	Size            int64
	StorageKey      string
	UploadedBy      string
	Description     string
	EmbeddingStatus EmbeddingStatus
	EmbeddingError  *EmbeddingError
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Chunk is one retrievable unit of a Document. A document's chunk set is
// written exactly once at ingestion time; afterwards chunks are only
// disabled or re-ingested, never edited in place.
type Chunk struct {
	DocumentId  ID
	EquipmentId ID
	TenantId    string
	FileName    string
	ChunkId     string
	ChunkIndex  int
	Text        string
	Embedding   []float32
	IsDisabled  bool
}

// ChunkContent is the clean content view of a retrieved chunk, intended for
// direct consumption by a language model. Deliberately carries no identifiers.
type ChunkContent struct {
	Text     string
	FileName string
	Score    float32
}

// ChunkMetadata is the audit/UI view of a retrieved chunk.
type ChunkMetadata struct {
	ChunkId     string
	DocumentId  string
	EquipmentId string
	TenantId    string
	ChunkIndex  int
	Score       float32
	FileName    string
}

// RetrievalMetadata describes one retrieval call: what was asked, what
// filters applied, and per-chunk metadata for the rows returned.
type RetrievalMetadata struct {
	Query           string
	K               int
	ChunksRetrieved int
	EquipmentId     string
	TenantId        string
	Chunks          []ChunkMetadata
}

// RetrievalResult pairs the clean content view with retrieval metadata.
// Both views are derived from the same ranked rows and are positionally
// aligned. Never persisted.
type RetrievalResult struct {
	Data     []ChunkContent
	Metadata RetrievalMetadata
}

// DocumentSummary is the per-file success summary returned by ingestion.
type DocumentSummary struct {
	DocumentId  ID
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string
	Status      EmbeddingStatus
	ChunkCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
