package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// DefaultSweepAge is how long a document may sit in processing before the
// sweeper considers its ingestion interrupted.
const DefaultSweepAge = 15 * time.Minute

// Sweeper reconciles documents stranded in processing by a crash between
// the document insert and the chunk insert. Stale documents are marked
// failed with a structured error rather than deleted, keeping the audit
// trail intact.
type Sweeper struct {
	documentRepository storage.DocumentRepository
	maxAge             time.Duration
	logger             *slog.Logger
}

// NewSweeper creates a new sweeper. A non-positive maxAge falls back to
// DefaultSweepAge.
func NewSweeper(documentRepository storage.DocumentRepository, maxAge time.Duration) (*Sweeper, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if maxAge <= 0 {
		maxAge = DefaultSweepAge
	}
	return &Sweeper{
		documentRepository: documentRepository,
		maxAge:             maxAge,
		logger:             slog.Default().With("component", "sweeper"),
	}, nil
}

// Sweep marks every processing document older than maxAge as failed.
// Returns the number of documents swept.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	documents, err := s.documentRepository.ListDocumentsByStatus(ctx, core.StatusProcessing)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-s.maxAge)
	swept := 0
	for _, document := range documents {
		if document.UpdatedAt.After(cutoff) {
			continue
		}

		embErr := &core.EmbeddingError{
			Code:    "ingestion_interrupted",
			Message: fmt.Sprintf("document stuck in processing since %s", document.UpdatedAt.Format(time.RFC3339)),
		}
		if _, err := s.documentRepository.UpdateStatus(ctx, document.Id, core.StatusFailed, embErr); err != nil {
			s.logger.Error("error sweeping stale document", "document", document.Id, "err", err)
			continue
		}

		s.logger.Warn("swept stale processing document",
			"document", document.Id, "file", document.FileName, "age", time.Since(document.UpdatedAt).Round(time.Second))
		swept++
	}

	return swept, nil
}
