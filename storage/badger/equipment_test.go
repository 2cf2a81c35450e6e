package badger

import (
	"context"
	"testing"

	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEquipmentRepo(t *testing.T) (storage.EquipmentRepository, func()) {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	repo, err := NewEquipmentRepository(backend)
	require.NoError(t, err)

	return repo, func() {
		repo.Close()
		backend.Close()
	}
}

func TestAddEquipment(t *testing.T) {
	repo, cleanup := setupEquipmentRepo(t)
	defer cleanup()
	ctx := context.Background()

	added, err := repo.AddEquipment(ctx, &core.Equipment{
		Name:        "CNC Mill",
		Description: "3-axis mill in hall A",
		TenantId:    "tenant-a",
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.NotZero(t, added.Id)
	assert.False(t, added.CreatedAt.IsZero())
	assert.Equal(t, added.CreatedAt, added.UpdatedAt)

	fetched, err := repo.GetEquipment(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "CNC Mill", fetched.Name)
	assert.Equal(t, "tenant-a", fetched.TenantId)
	assert.True(t, fetched.IsActive)
}

func TestAddEquipmentDuplicateName(t *testing.T) {
	repo, cleanup := setupEquipmentRepo(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.AddEquipment(ctx, &core.Equipment{Name: "Pump", TenantId: "tenant-a"})
	require.NoError(t, err)

	_, err = repo.AddEquipment(ctx, &core.Equipment{Name: "Pump", TenantId: "tenant-a"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same name under a different tenant is fine
	_, err = repo.AddEquipment(ctx, &core.Equipment{Name: "Pump", TenantId: "tenant-b"})
	assert.NoError(t, err)
}

func TestAddEquipmentInvalid(t *testing.T) {
	repo, cleanup := setupEquipmentRepo(t)
	defer cleanup()

	_, err := repo.AddEquipment(context.Background(), &core.Equipment{TenantId: "tenant-a"})
	assert.ErrorIs(t, err, core.ErrInvalidEquipment)
}

func TestGetEquipmentNotFound(t *testing.T) {
	repo, cleanup := setupEquipmentRepo(t)
	defer cleanup()

	_, err := repo.GetEquipment(context.Background(), core.ID(9999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListEquipment(t *testing.T) {
	repo, cleanup := setupEquipmentRepo(t)
	defer cleanup()
	ctx := context.Background()

	for _, item := range []struct{ name, tenant string }{
		{"Pump", "tenant-a"},
		{"Compressor", "tenant-a"},
		{"Lathe", "tenant-b"},
	} {
		_, err := repo.AddEquipment(ctx, &core.Equipment{Name: item.name, TenantId: item.tenant})
		require.NoError(t, err)
	}

	t.Run("all tenants", func(t *testing.T) {
		all, err := repo.ListEquipment(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("scoped to tenant", func(t *testing.T) {
		scoped, err := repo.ListEquipment(ctx, "tenant-a")
		require.NoError(t, err)
		assert.Len(t, scoped, 2)
		for _, e := range scoped {
			assert.Equal(t, "tenant-a", e.TenantId)
		}
	})

	t.Run("unknown tenant empty", func(t *testing.T) {
		none, err := repo.ListEquipment(ctx, "tenant-z")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
