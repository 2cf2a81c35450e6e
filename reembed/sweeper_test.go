package reembed

import (
	"context"
	"testing"
	"time"

	"github.com/slateworks/equipkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeperValidation(t *testing.T) {
	_, err := NewSweeper(nil, time.Minute)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
}

func TestSweepMarksStaleProcessingDocuments(t *testing.T) {
	f := setupReembed(t)
	defer f.cleanup()
	ctx := context.Background()

	stale := f.seedDocument(t, core.ID(1), core.StatusProcessing, 0)
	completed := f.seedDocument(t, core.ID(1), core.StatusCompleted, 0)

	// Let the processing document age past the tiny threshold.
	time.Sleep(20 * time.Millisecond)

	sweeper, err := NewSweeper(f.documentRepo, time.Nanosecond)
	require.NoError(t, err)

	swept, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	document, err := f.documentRepo.GetDocument(ctx, stale.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, document.EmbeddingStatus)
	require.NotNil(t, document.EmbeddingError)
	assert.Equal(t, "ingestion_interrupted", document.EmbeddingError.Code)

	// Terminal documents are never swept.
	document, err = f.documentRepo.GetDocument(ctx, completed.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, document.EmbeddingStatus)
}

func TestSweepLeavesFreshProcessingDocuments(t *testing.T) {
	f := setupReembed(t)
	defer f.cleanup()
	ctx := context.Background()

	fresh := f.seedDocument(t, core.ID(1), core.StatusProcessing, 0)

	sweeper, err := NewSweeper(f.documentRepo, time.Hour)
	require.NoError(t, err)

	swept, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)

	document, err := f.documentRepo.GetDocument(ctx, fresh.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusProcessing, document.EmbeddingStatus)
}
