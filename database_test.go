package equipkb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/slateworks/equipkb/ai/mock"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/ingestion"
	"github.com/slateworks/equipkb/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.EquipmentRepository())
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the data directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestor", func(t *testing.T) {
		ingestor, err := db.NewIngestor()
		require.NoError(t, err)
		assert.NotNil(t, ingestor)
	})

	t.Run("can create retriever", func(t *testing.T) {
		retriever, err := db.NewRetriever()
		require.NoError(t, err)
		assert.NotNil(t, retriever)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder, err := db.NewReembedder(nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, reembedder)
	})

	t.Run("can create sweeper", func(t *testing.T) {
		sweeper, err := db.NewSweeper(0)
		require.NoError(t, err)
		assert.NotNil(t, sweeper)
	})
}

// End-to-end: create equipment, ingest a text file, retrieve a chunk.
func TestDatabase_IngestAndRetrieve(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	equipment, err := db.EquipmentRepository().AddEquipment(ctx, &core.Equipment{
		Name:     "Hydraulic Press",
		TenantId: "tenant-a",
		IsActive: true,
	})
	require.NoError(t, err)

	ingestor, err := db.NewIngestor()
	require.NoError(t, err)

	result, err := ingestor.Ingest(ctx, ingestion.IngestRequest{
		EquipmentId: equipment.Id,
		TenantId:    "tenant-a",
		UploadedBy:  "tech-7",
		Files: []ingestion.FileUpload{{
			Name:        "maintenance.md",
			ContentType: "text/markdown",
			Data:        []byte("# Maintenance\n\nBleed the hydraulic circuit before seasonal storage."),
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	retriever, err := db.NewRetriever()
	require.NoError(t, err)

	retrieved, err := retriever.Retrieve(ctx, "hydraulic maintenance",
		retrieval.WithTenant("tenant-a"))
	require.NoError(t, err)
	require.NotEmpty(t, retrieved.Data)
	assert.Equal(t, "maintenance.md", retrieved.Data[0].FileName)
}
