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

package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Workers is the number of documents processed concurrently
	Workers int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		BatchSize:      100,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        workers,
	}
}

// Reembedder re-embeds the chunks of completed documents with the configured
// embedding model. Documents are fanned out across a worker pool; each
// document's chunk set is touched by exactly one worker.
type Reembedder struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	config             *Config
	progress           io.Writer
	processor          *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           embedder,
		config:             config,
		progress:           progress,
		processor:          NewBatchProcessor(chunkRepository, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run re-embeds every completed document, or only one equipment's documents
// when equipmentID is non-zero. Per-document failures are collected and
// joined; one document's failure does not stop the others.
func (r *Reembedder) Run(ctx context.Context, equipmentID core.ID) error {
	documents, err := r.listDocuments(ctx, equipmentID)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Fprintf(r.progress, "No completed documents to reembed\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d, workers: %d)\n",
		len(documents), r.config.BatchSize, r.config.Workers)

	tracker := NewProgressTracker(r.progress, len(documents), r.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	for _, document := range documents {
		document := document
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.reembedDocument(ctx, document); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("document %s: %w", document.Id, err))
				mu.Unlock()
			}
			tracker.Increment(1)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failures = append(failures, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%d failed)\n",
		len(documents), elapsed.Round(time.Second), len(failures))

	return errors.Join(failures...)
}

func (r *Reembedder) listDocuments(ctx context.Context, equipmentID core.ID) ([]*core.Document, error) {
	if equipmentID == 0 {
		return r.documentRepository.ListDocumentsByStatus(ctx, core.StatusCompleted)
	}

	documents, err := r.documentRepository.ListDocumentsByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	completed := documents[:0]
	for _, document := range documents {
		if document.EmbeddingStatus == core.StatusCompleted {
			completed = append(completed, document)
		}
	}
	return completed, nil
}

// reembedDocument re-embeds one document's chunks in batches.
func (r *Reembedder) reembedDocument(ctx context.Context, document *core.Document) error {
	chunks, err := r.chunkRepository.GetChunksByDocument(ctx, document.Id)
	if err != nil {
		return err
	}

	for i := 0; i < len(chunks); i += r.config.BatchSize {
		end := i + r.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := r.processor.Process(ctx, chunks[i:end]); err != nil {
			return err
		}
	}
	return nil
}
