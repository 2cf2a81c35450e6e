package badger

import (
	"context"
	"testing"

	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocumentRepo(t *testing.T) (storage.DocumentRepository, func()) {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	repo, err := NewDocumentRepository(backend)
	require.NoError(t, err)

	return repo, func() {
		repo.Close()
		backend.Close()
	}
}

func newTestDocument(equipmentID core.ID) *core.Document {
	return &core.Document{
		EquipmentId:     equipmentID,
		TenantId:        "tenant-a",
		FileName:        "manual.pdf",
		ContentType:     "application/pdf",
		StorageKey:      "tenant-a/equipment/1/abc-manual.pdf",
		EmbeddingStatus: core.StatusPending,
	}
}

func TestAddDocument(t *testing.T) {
	repo, cleanup := setupDocumentRepo(t)
	defer cleanup()
	ctx := context.Background()

	added, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
	require.NoError(t, err)
	assert.NotZero(t, added.Id)
	assert.False(t, added.CreatedAt.IsZero())

	fetched, err := repo.GetDocument(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", fetched.FileName)
	assert.Equal(t, core.StatusPending, fetched.EmbeddingStatus)
}

func TestGetDocumentNotFound(t *testing.T) {
	repo, cleanup := setupDocumentRepo(t)
	defer cleanup()

	_, err := repo.GetDocument(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDocumentsByEquipment(t *testing.T) {
	repo, cleanup := setupDocumentRepo(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.AddDocument(ctx, newTestDocument(core.ID(7)))
		require.NoError(t, err)
	}
	_, err := repo.AddDocument(ctx, newTestDocument(core.ID(8)))
	require.NoError(t, err)

	docs, err := repo.ListDocumentsByEquipment(ctx, core.ID(7))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for _, d := range docs {
		assert.Equal(t, core.ID(7), d.EquipmentId)
	}

	// Index order follows insertion order
	assert.Less(t, uint64(docs[0].Id), uint64(docs[1].Id))
	assert.Less(t, uint64(docs[1].Id), uint64(docs[2].Id))

	empty, err := repo.ListDocumentsByEquipment(ctx, core.ID(99))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListDocumentsByStatus(t *testing.T) {
	repo, cleanup := setupDocumentRepo(t)
	defer cleanup()
	ctx := context.Background()

	first, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
	require.NoError(t, err)
	_, err = repo.AddDocument(ctx, newTestDocument(core.ID(1)))
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, first.Id, core.StatusProcessing, nil)
	require.NoError(t, err)

	processing, err := repo.ListDocumentsByStatus(ctx, core.StatusProcessing)
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, first.Id, processing[0].Id)

	pending, err := repo.ListDocumentsByStatus(ctx, core.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo, cleanup := setupDocumentRepo(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("pending to processing to completed", func(t *testing.T) {
		doc, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
		require.NoError(t, err)

		updated, err := repo.UpdateStatus(ctx, doc.Id, core.StatusProcessing, nil)
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, updated.EmbeddingStatus)

		updated, err = repo.UpdateStatus(ctx, doc.Id, core.StatusCompleted, nil)
		require.NoError(t, err)
		assert.Equal(t, core.StatusCompleted, updated.EmbeddingStatus)
		assert.Nil(t, updated.EmbeddingError)
	})

	t.Run("failure records the error", func(t *testing.T) {
		doc, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusProcessing, nil)
		require.NoError(t, err)

		embErr := &core.EmbeddingError{
			Code:         "all_chunks_failed",
			Message:      "embedding failed for every chunk",
			FailedChunks: 4,
		}
		updated, err := repo.UpdateStatus(ctx, doc.Id, core.StatusFailed, embErr)
		require.NoError(t, err)
		assert.Equal(t, core.StatusFailed, updated.EmbeddingStatus)
		require.NotNil(t, updated.EmbeddingError)
		assert.Equal(t, 4, updated.EmbeddingError.FailedChunks)

		// Persisted, not just returned
		fetched, err := repo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.NotNil(t, fetched.EmbeddingError)
		assert.Equal(t, "all_chunks_failed", fetched.EmbeddingError.Code)
	})

	t.Run("terminal states reject transitions", func(t *testing.T) {
		doc, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusProcessing, nil)
		require.NoError(t, err)
		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusCompleted, nil)
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusFailed, nil)
		assert.ErrorIs(t, err, storage.ErrIllegalTransition)
		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusPending, nil)
		assert.ErrorIs(t, err, storage.ErrIllegalTransition)
	})

	t.Run("skipping processing is illegal", func(t *testing.T) {
		doc, err := repo.AddDocument(ctx, newTestDocument(core.ID(1)))
		require.NoError(t, err)

		_, err = repo.UpdateStatus(ctx, doc.Id, core.StatusCompleted, nil)
		assert.ErrorIs(t, err, storage.ErrIllegalTransition)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, core.ID(4040), core.StatusProcessing, nil)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
