package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		EquipmentId:     7,
		TenantId:        "tenant-a",
		FileName:        "manual.pdf",
		ContentType:     "application/pdf",
		Size:            1024,
		StorageKey:      "tenant-a/equipment/7/abc-manual.pdf",
		UploadedBy:      "user-1",
		EmbeddingStatus: StatusProcessing,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func TestValidateEquipment(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateEquipment(&Equipment{Name: "Pump A", TenantId: "tenant-a", IsActive: true})
		require.NoError(t, err)
	})

	tests := []struct {
		name      string
		equipment *Equipment
		wantErr   error
	}{
		{"nil equipment", nil, ErrInvalidEquipment},
		{"empty name", &Equipment{TenantId: "tenant-a"}, ErrEmptyName},
		{"empty tenant", &Equipment{Name: "Pump A"}, ErrEmptyTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEquipment(tt.equipment)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEquipment)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateDocument(validDocument()))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDocument(nil), ErrInvalidDocument)
	})

	t.Run("missing equipment id", func(t *testing.T) {
		d := validDocument()
		d.EquipmentId = 0
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidDocument)
	})

	t.Run("empty tenant", func(t *testing.T) {
		d := validDocument()
		d.TenantId = ""
		err := ValidateDocument(d)
		assert.ErrorIs(t, err, ErrEmptyTenant)
	})

	t.Run("empty file name", func(t *testing.T) {
		d := validDocument()
		d.FileName = ""
		assert.ErrorIs(t, ValidateDocument(d), ErrEmptyFileName)
	})

	t.Run("unknown status", func(t *testing.T) {
		d := validDocument()
		d.EmbeddingStatus = EmbeddingStatus(99)
		assert.ErrorIs(t, ValidateDocument(d), ErrInvalidStatus)
	})
}

func TestValidateChunk(t *testing.T) {
	valid := func() *Chunk {
		return &Chunk{
			DocumentId:  3,
			EquipmentId: 7,
			TenantId:    "tenant-a",
			FileName:    "manual.pdf",
			ChunkId:     "chunk-uuid-1",
			ChunkIndex:  0,
			Text:        "operating pressure must not exceed 8 bar",
			Embedding:   []float32{0.1, 0.2, 0.3},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateChunk(valid()))
	})

	t.Run("empty embedding is allowed", func(t *testing.T) {
		c := valid()
		c.Embedding = nil
		require.NoError(t, ValidateChunk(c))
	})

	t.Run("nil chunk", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChunk(nil), ErrInvalidChunk)
	})

	t.Run("missing document id", func(t *testing.T) {
		c := valid()
		c.DocumentId = 0
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidChunk)
	})

	t.Run("missing chunk id", func(t *testing.T) {
		c := valid()
		c.ChunkId = ""
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidChunk)
	})

	t.Run("negative index", func(t *testing.T) {
		c := valid()
		c.ChunkIndex = -1
		assert.ErrorIs(t, ValidateChunk(c), ErrNegativeIndex)
	})

	t.Run("empty text", func(t *testing.T) {
		c := valid()
		c.Text = ""
		assert.ErrorIs(t, ValidateChunk(c), ErrEmptyText)
	})
}
