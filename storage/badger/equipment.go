package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// EquipmentRepository implements storage.EquipmentRepository for BadgerDB.
type EquipmentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EquipmentRepository = (*EquipmentRepository)(nil)

// NewEquipmentRepository creates a new EquipmentRepository.
func NewEquipmentRepository(backend *Backend) (*EquipmentRepository, error) {
	idSeq, err := backend.GetSequence(equipmentIDSeq)
	if err != nil {
		return nil, err
	}

	return &EquipmentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EquipmentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EquipmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEquipment adds a new equipment record. The (tenant, name) pair must be
// unique; a collision returns storage.ErrDuplicateKey.
func (r *EquipmentRepository) AddEquipment(ctx context.Context, equipment *core.Equipment) (*core.Equipment, error) {
	if err := core.ValidateEquipment(equipment); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nameKey := makeEquipmentNameKey(equipment.TenantId, equipment.Name)
		if _, err := tx.Get(nameKey); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		equipment.Id = core.ID(nextID)

		equipment.CreatedAt = time.Now().UTC()
		equipment.UpdatedAt = equipment.CreatedAt

		if err := tx.Set(makeEquipmentKey(equipment.Id), storage.MarshalEquipment(equipment)); err != nil {
			return err
		}
		if err := tx.Set(nameKey, storage.MarshalID(equipment.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return equipment, nil
}

// GetEquipment retrieves a single equipment record by ID.
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id core.ID) (*core.Equipment, error) {
	var equipment *core.Equipment

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEquipmentKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			equipment, err = storage.UnmarshalEquipment(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return equipment, nil
}

// ListEquipment retrieves all equipment records, optionally scoped to a
// tenant. An empty tenantID returns every tenant's equipment.
func (r *EquipmentRepository) ListEquipment(ctx context.Context, tenantID string) ([]*core.Equipment, error) {
	var result []*core.Equipment

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(equipmentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var equipment *core.Equipment
			err := iter.Item().Value(func(val []byte) error {
				var err error
				equipment, err = storage.UnmarshalEquipment(val)
				return err
			})
			if err != nil {
				return err
			}
			if tenantID != "" && equipment.TenantId != tenantID {
				continue
			}
			result = append(result, equipment)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}
