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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/chunker"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/extract"
	"github.com/slateworks/equipkb/storage"
)

// DefaultChunkTimeout bounds a single chunk's embedding call. Expiry is
// treated as an embedding failure for that chunk.
const DefaultChunkTimeout = 30 * time.Second

// FileUpload is one raw file submitted for ingestion.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// IngestRequest describes a batch of files to ingest under one equipment.
type IngestRequest struct {
	EquipmentId core.ID
	TenantId    string
	UploadedBy  string
	Description string
	Files       []FileUpload
}

// FileFailure records one file that was skipped or failed during a batch.
type FileFailure struct {
	FileName string
	Err      error
}

// IngestResult is the outcome of one batch. Documents lists per-file success
// summaries; Failures lists files that were skipped or failed. A batch with
// failures is still a successful batch.
type IngestResult struct {
	Documents []core.DocumentSummary
	Count     int
	Failures  []FileFailure
}

// Ingestor processes uploaded files into embedded, retrievable chunks.
type Ingestor struct {
	equipmentRepository storage.EquipmentRepository
	documentRepository  storage.DocumentRepository
	chunkRepository     storage.ChunkRepository
	extractor           extract.Extractor
	splitter            *chunker.Splitter
	embedder            ai.Embedder
	chunkTimeout        time.Duration
	logger              *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithChunkTimeout sets the per-chunk embedding timeout.
// Default is DefaultChunkTimeout. Non-positive values are ignored.
func WithChunkTimeout(timeout time.Duration) Option {
	return func(ing *Ingestor) {
		if timeout > 0 {
			ing.chunkTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) {
		if logger != nil {
			ing.logger = logger.With("component", "ingestor")
		}
	}
}

// NewIngestor creates a new Ingestor.
func NewIngestor(
	equipmentRepository storage.EquipmentRepository,
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	extractor extract.Extractor,
	splitter *chunker.Splitter,
	embedder ai.Embedder,
	opts ...Option,
) (*Ingestor, error) {
	if equipmentRepository == nil {
		return nil, ErrEquipmentRepositoryRequired
	}
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ing := &Ingestor{
		equipmentRepository: equipmentRepository,
		documentRepository:  documentRepository,
		chunkRepository:     chunkRepository,
		extractor:           extractor,
		splitter:            splitter,
		embedder:            embedder,
		chunkTimeout:        DefaultChunkTimeout,
		logger:              slog.Default().With("component", "ingestor"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing, nil
}

// Ingest processes a batch of files sequentially. Each file is independent:
// a skipped or failed file never rolls back a sibling's success. The only
// whole-batch errors are an invalid request and an unknown equipment.
func (ing *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.TenantId == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrEmptyTenant)
	}
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}

	// Verify the equipment exists before touching any file.
	if _, err := ing.equipmentRepository.GetEquipment(ctx, req.EquipmentId); err != nil {
		return nil, fmt.Errorf("equipment %s: %w", req.EquipmentId, err)
	}

	result := &IngestResult{}
	for _, file := range req.Files {
		summary, err := ing.ingestFile(ctx, req, file)
		if err != nil {
			ing.logger.Warn("file not ingested",
				"file", file.Name, "equipment", req.EquipmentId, "err", err)
			result.Failures = append(result.Failures, FileFailure{FileName: file.Name, Err: err})
			continue
		}
		result.Documents = append(result.Documents, *summary)
	}

	result.Count = len(result.Documents)
	ing.logger.Info("batch ingested",
		"equipment", req.EquipmentId,
		"files", len(req.Files),
		"documents", result.Count,
		"failures", len(result.Failures))
	return result, nil
}

// ingestFile runs the full pipeline for one file. Returned errors describe
// why the file was skipped or failed; they never abort the batch.
func (ing *Ingestor) ingestFile(ctx context.Context, req IngestRequest, file FileUpload) (*core.DocumentSummary, error) {
	if !ing.extractor.IsSupported(file.ContentType, file.Name) {
		return nil, fmt.Errorf("%w: %s (%s)", extract.ErrUnsupportedFormat, file.Name, file.ContentType)
	}

	text, err := ing.extractor.Extract(ctx, file.Data, file.ContentType, file.Name)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, file.Name)
	}

	texts, err := ing.splitter.Split(text)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChunkingExhausted, file.Name)
	}

	// Persist the document as processing before any embedding work so
	// partial ingestion is observable.
	document, err := ing.documentRepository.AddDocument(ctx, &core.Document{
		EquipmentId:     req.EquipmentId,
		TenantId:        req.TenantId,
		FileName:        file.Name,
		ContentType:     file.ContentType,
		Size:            int64(len(file.Data)),
		StorageKey:      makeStorageKey(req.TenantId, req.EquipmentId, file.Name, file.Data),
		UploadedBy:      req.UploadedBy,
		Description:     req.Description,
		EmbeddingStatus: core.StatusProcessing,
	})
	if err != nil {
		return nil, err
	}

	chunks, failed := ing.embedChunks(ctx, document, texts)
	if len(chunks) == 0 {
		embErr := &core.EmbeddingError{
			Code:         "all_chunks_failed",
			Message:      "embedding failed for every chunk",
			FailedChunks: failed,
		}
		if _, statusErr := ing.documentRepository.UpdateStatus(ctx, document.Id, core.StatusFailed, embErr); statusErr != nil {
			ing.logger.Error("error marking document failed", "document", document.Id, "err", statusErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrAllChunksFailed, file.Name)
	}

	if err := ing.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		embErr := &core.EmbeddingError{
			Code:    "chunk_write_failed",
			Message: err.Error(),
		}
		if _, statusErr := ing.documentRepository.UpdateStatus(ctx, document.Id, core.StatusFailed, embErr); statusErr != nil {
			ing.logger.Error("error marking document failed", "document", document.Id, "err", statusErr)
		}
		return nil, err
	}

	document, err = ing.documentRepository.UpdateStatus(ctx, document.Id, core.StatusCompleted, nil)
	if err != nil {
		return nil, err
	}

	ing.logger.Info("document ingested",
		"document", document.Id,
		"file", file.Name,
		"chunks", len(chunks),
		"dropped", failed)

	return &core.DocumentSummary{
		DocumentId:  document.Id,
		FileName:    document.FileName,
		ContentType: document.ContentType,
		Size:        document.Size,
		StorageKey:  document.StorageKey,
		Status:      document.EmbeddingStatus,
		ChunkCount:  len(chunks),
		CreatedAt:   document.CreatedAt,
		UpdatedAt:   document.UpdatedAt,
	}, nil
}

// embedChunks embeds each chunk text sequentially under a bounded per-call
// timeout. A failed chunk is dropped and counted; surviving chunks keep
// their original zero-based index.
func (ing *Ingestor) embedChunks(ctx context.Context, document *core.Document, texts []string) ([]*core.Chunk, int) {
	chunks := make([]*core.Chunk, 0, len(texts))
	failed := 0

	for i, text := range texts {
		vector, err := ing.embedChunk(ctx, text)
		if err != nil {
			ing.logger.Warn("chunk embedding failed, dropping chunk",
				"document", document.Id, "chunk_index", i, "err", err)
			failed++
			continue
		}
		chunks = append(chunks, &core.Chunk{
			DocumentId:  document.Id,
			EquipmentId: document.EquipmentId,
			TenantId:    document.TenantId,
			FileName:    document.FileName,
			ChunkId:     uuid.NewString(),
			ChunkIndex:  i,
			Text:        text,
			Embedding:   vector,
		})
	}
	return chunks, failed
}

func (ing *Ingestor) embedChunk(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, ing.chunkTimeout)
	defer cancel()
	return ing.embedder.EmbedText(ctx, text)
}

// makeStorageKey derives the opaque storage key for an uploaded file. The
// content hash makes re-uploads of identical bytes observable.
func makeStorageKey(tenantID string, equipmentID core.ID, fileName string, data []byte) string {
	return fmt.Sprintf("%s/equipment/%s/%016x-%s",
		tenantID, equipmentID, uint64(core.IDFromContent(data)), fileName)
}
