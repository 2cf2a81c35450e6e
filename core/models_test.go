package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent([]byte("pump station manual"))
		id2 := IDFromContent([]byte("pump station manual"))
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different ID", func(t *testing.T) {
		id1 := IDFromContent([]byte("compressor"))
		id2 := IDFromContent([]byte("condenser"))
		assert.NotEqual(t, id1, id2)
	})
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"zero", "0", ID(0), false},
		{"small", "42", ID(42), false},
		{"max uint64", "18446744073709551615", ID(18446744073709551615), false},
		{"empty", "", 0, true},
		{"hex-like", "0xff", 0, true},
		{"negative", "-1", 0, true},
		{"object-id style", "64f1b2c3d4e5f60718293a4b", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestEmbeddingStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "processing", StatusProcessing.String())
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", EmbeddingStatus(0).String())
}

func TestEmbeddingStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from EmbeddingStatus
		to   EmbeddingStatus
		want bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"processing to pending", StatusProcessing, StatusPending, false},
		{"completed to failed", StatusCompleted, StatusFailed, false},
		{"completed to processing", StatusCompleted, StatusProcessing, false},
		{"failed to processing", StatusFailed, StatusProcessing, false},
		{"failed to completed", StatusFailed, StatusCompleted, false},
		{"same status is not a transition", StatusProcessing, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestEmbeddingStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
