package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted entities. Timestamps are stored as
// microsecond Unix values; embedding vectors as a length-prefixed run of
// varint-encoded float32s.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// EmbeddingStatusMUS serializes EmbeddingStatus values.
var EmbeddingStatusMUS = embeddingStatusMUS{}

type embeddingStatusMUS struct{}

func (embeddingStatusMUS) Marshal(v EmbeddingStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (embeddingStatusMUS) Unmarshal(bs []byte) (v EmbeddingStatus, n int, err error) {
	raw, n, err := varint.Int.Unmarshal(bs)
	return EmbeddingStatus(raw), n, err
}

func (embeddingStatusMUS) Size(v EmbeddingStatus) (size int) {
	return varint.Int.Size(int(v))
}

// EquipmentMUS serializes Equipment values.
var EquipmentMUS = equipmentMUS{}

type equipmentMUS struct{}

func (equipmentMUS) Marshal(v Equipment, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.TenantId, bs[n:])
	n += ord.Bool.Marshal(v.IsActive, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (equipmentMUS) Unmarshal(bs []byte) (v Equipment, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.TenantId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.IsActive, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.CreatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (equipmentMUS) Size(v Equipment) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Description)
	size += ord.String.Size(v.TenantId)
	size += ord.Bool.Size(v.IsActive)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// DocumentMUS serializes Document values.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.EquipmentId, bs[n:])
	n += ord.String.Marshal(v.TenantId, bs[n:])
	n += ord.String.Marshal(v.FileName, bs[n:])
	n += ord.String.Marshal(v.ContentType, bs[n:])
	n += varint.Int64.Marshal(v.Size, bs[n:])
	n += ord.String.Marshal(v.StorageKey, bs[n:])
	n += ord.String.Marshal(v.UploadedBy, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += EmbeddingStatusMUS.Marshal(v.EmbeddingStatus, bs[n:])
	n += marshalEmbeddingError(v.EmbeddingError, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.EquipmentId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.TenantId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.FileName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ContentType, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Size, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.StorageKey, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.UploadedBy, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.EmbeddingStatus, m, err = EmbeddingStatusMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.EmbeddingError, m, err = unmarshalEmbeddingError(bs[n:]); err != nil {
		return
	}
	n += m
	if v.CreatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.EquipmentId)
	size += ord.String.Size(v.TenantId)
	size += ord.String.Size(v.FileName)
	size += ord.String.Size(v.ContentType)
	size += varint.Int64.Size(v.Size)
	size += ord.String.Size(v.StorageKey)
	size += ord.String.Size(v.UploadedBy)
	size += ord.String.Size(v.Description)
	size += EmbeddingStatusMUS.Size(v.EmbeddingStatus)
	size += sizeEmbeddingError(v.EmbeddingError)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += IDMUS.Marshal(v.EquipmentId, bs[n:])
	n += ord.String.Marshal(v.TenantId, bs[n:])
	n += ord.String.Marshal(v.FileName, bs[n:])
	n += ord.String.Marshal(v.ChunkId, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(len(v.Embedding), bs[n:])
	for _, f := range v.Embedding {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	n += ord.Bool.Marshal(v.IsDisabled, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var m int
	if v.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.EquipmentId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.TenantId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.FileName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ChunkId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if count > 0 {
		v.Embedding = make([]float32, count)
		for i := 0; i < count; i++ {
			if v.Embedding[i], m, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
				return
			}
			n += m
		}
	}
	if v.IsDisabled, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.DocumentId)
	size += IDMUS.Size(v.EquipmentId)
	size += ord.String.Size(v.TenantId)
	size += ord.String.Size(v.FileName)
	size += ord.String.Size(v.ChunkId)
	size += varint.Int.Size(v.ChunkIndex)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(len(v.Embedding))
	for _, f := range v.Embedding {
		size += varint.Float32.Size(f)
	}
	size += ord.Bool.Size(v.IsDisabled)
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	if t.IsZero() {
		return varint.Int64.Marshal(0, bs)
	}
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	if t.IsZero() {
		return varint.Int64.Size(0)
	}
	return varint.Int64.Size(t.UnixMicro())
}

func marshalEmbeddingError(e *EmbeddingError, bs []byte) (n int) {
	n = ord.Bool.Marshal(e != nil, bs)
	if e == nil {
		return n
	}
	n += ord.String.Marshal(e.Code, bs[n:])
	n += ord.String.Marshal(e.Message, bs[n:])
	n += varint.Int.Marshal(e.FailedChunks, bs[n:])
	return n
}

func unmarshalEmbeddingError(bs []byte) (e *EmbeddingError, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	var m int
	e = &EmbeddingError{}
	if e.Code, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if e.Message, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if e.FailedChunks, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func sizeEmbeddingError(e *EmbeddingError) (size int) {
	size = ord.Bool.Size(e != nil)
	if e == nil {
		return size
	}
	size += ord.String.Size(e.Code)
	size += ord.String.Size(e.Message)
	size += varint.Int.Size(e.FailedChunks)
	return size
}
