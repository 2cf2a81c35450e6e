package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
// Embedding status transitions are validated here so no caller can move a
// document backwards through its lifecycle.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocument adds a new document record.
func (r *DocumentRepository) AddDocument(ctx context.Context, document *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
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
		document.Id = core.ID(nextID)

		document.CreatedAt = time.Now().UTC()
		document.UpdatedAt = document.CreatedAt

		if err := tx.Set(makeDocumentKey(document.Id), storage.MarshalDocument(document)); err != nil {
			return err
		}
		equipKey := makeDocumentEquipKey(document.EquipmentId, document.Id)
		if err := tx.Set(equipKey, storage.MarshalID(document.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return document, nil
}

// GetDocument retrieves a single document record by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var document *core.Document

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		document, err = getDocumentTx(tx, id)
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	return document, nil
}

// ListDocumentsByEquipment retrieves all documents under an equipment in
// insertion order, via the document-by-equipment index.
func (r *DocumentRepository) ListDocumentsByEquipment(ctx context.Context, equipmentID core.ID) ([]*core.Document, error) {
	var result []*core.Document

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentEquipKey(equipmentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			document, err := getDocumentTx(tx, id)
			if err != nil {
				return err
			}
			result = append(result, document)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListDocumentsByStatus retrieves all documents currently in the given
// embedding status. Full record scan; used by maintenance sweeps.
func (r *DocumentRepository) ListDocumentsByStatus(ctx context.Context, status core.EmbeddingStatus) ([]*core.Document, error) {
	var result []*core.Document

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if document.EmbeddingStatus == status {
				result = append(result, document)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus transitions a document's embedding status. Transitions only
// move forward along pending -> processing -> {completed, failed}; anything
// else returns storage.ErrIllegalTransition.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id core.ID, status core.EmbeddingStatus, embErr *core.EmbeddingError) (*core.Document, error) {
	if err := core.ValidateEmbeddingStatus(status); err != nil {
		return nil, err
	}

	var document *core.Document

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		document, err = getDocumentTx(tx, id)
		if err != nil {
			return err
		}

		if !document.EmbeddingStatus.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", storage.ErrIllegalTransition,
				document.EmbeddingStatus, status)
		}

		document.EmbeddingStatus = status
		document.UpdatedAt = time.Now().UTC()
		if status == core.StatusFailed {
			document.EmbeddingError = embErr
		}

		if err := tx.Set(makeDocumentKey(document.Id), storage.MarshalDocument(document)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return document, nil
}

func getDocumentTx(tx *badger.Txn, id core.ID) (*core.Document, error) {
	item, err := tx.Get(makeDocumentKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		document, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}
