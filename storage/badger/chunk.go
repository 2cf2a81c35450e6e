package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op; chunk ids come from the caller, not a sequence.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend's chunk scan.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, filter storage.Filter, limit, numCandidates int) ([]*storage.ScoredChunk, error) {
	return r.backend.FindSimilarChunks(ctx, vector, filter, limit, numCandidates)
}

// AddChunks persists a document's chunk set as a single batch write.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := tx.Set(makeChunkKey(chunk.ChunkId), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			docKey := makeChunkDocKey(chunk.DocumentId, chunk.ChunkIndex, chunk.ChunkId)
			if err := tx.Set(docKey, []byte(chunk.ChunkId)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunksByDocument retrieves all chunks of a document in chunk index
// order, via the chunk-by-document index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		chunkIDs, err := chunkIDsForDocumentTx(tx, documentID)
		if err != nil {
			return err
		}
		for _, chunkID := range chunkIDs {
			chunk, err := getChunkTx(tx, chunkID)
			if err != nil {
				return err
			}
			result = append(result, chunk)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetDisabled flips the soft-delete flag on every chunk of a document.
func (r *ChunkRepository) SetDisabled(ctx context.Context, documentID core.ID, disabled bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		chunkIDs, err := chunkIDsForDocumentTx(tx, documentID)
		if err != nil {
			return err
		}
		for _, chunkID := range chunkIDs {
			chunk, err := getChunkTx(tx, chunkID)
			if err != nil {
				return err
			}
			if chunk.IsDisabled == disabled {
				continue
			}
			chunk.IsDisabled = disabled
			if err := tx.Set(makeChunkKey(chunk.ChunkId), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// UpdateChunks overwrites existing chunk records, keyed by chunk id.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if _, err := tx.Get(makeChunkKey(chunk.ChunkId)); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(chunk.ChunkId), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func chunkIDsForDocumentTx(tx *badger.Txn, documentID core.ID) ([]string, error) {
	var chunkIDs []string

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkDocKey(documentID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunkID string
		err := iter.Item().Value(func(val []byte) error {
			chunkID = string(val)
			return nil
		})
		if err != nil {
			return nil, err
		}
		chunkIDs = append(chunkIDs, chunkID)
	}
	return chunkIDs, nil
}

func getChunkTx(tx *badger.Txn, chunkID string) (*core.Chunk, error) {
	item, err := tx.Get(makeChunkKey(chunkID))
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return chunk, nil
}
