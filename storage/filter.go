package storage

import "github.com/slateworks/equipkb/core"

// Filter field names understood by chunk similarity search.
const (
	FieldEquipmentId = "equipment_id"
	FieldTenantId    = "tenant_id"
	FieldDocumentId  = "document_id"
	FieldFileName    = "file_name"
	FieldChunkId     = "chunk_id"
	FieldIsDisabled  = "is_disabled"
)

// Filter is a set of equality constraints applied to chunks during
// similarity search. A chunk matches only if every entry matches; a key that
// names no chunk field matches nothing, mirroring missing-field semantics in
// document stores.
type Filter map[string]any

// Matches reports whether the chunk satisfies every filter entry.
func (f Filter) Matches(chunk *core.Chunk) bool {
	for key, want := range f {
		got, ok := chunkField(chunk, key)
		if !ok || !equalFilterValue(got, want) {
			return false
		}
	}
	return true
}

func chunkField(chunk *core.Chunk, key string) (any, bool) {
	switch key {
	case FieldEquipmentId:
		return chunk.EquipmentId, true
	case FieldTenantId:
		return chunk.TenantId, true
	case FieldDocumentId:
		return chunk.DocumentId, true
	case FieldFileName:
		return chunk.FileName, true
	case FieldChunkId:
		return chunk.ChunkId, true
	case FieldIsDisabled:
		return chunk.IsDisabled, true
	default:
		return nil, false
	}
}

// equalFilterValue compares a chunk field against a filter value, accepting
// the string form of IDs so caller-supplied raw filters work unchanged.
func equalFilterValue(got, want any) bool {
	if id, ok := got.(core.ID); ok {
		switch w := want.(type) {
		case core.ID:
			return id == w
		case uint64:
			return uint64(id) == w
		case int:
			return w >= 0 && uint64(id) == uint64(w)
		case string:
			parsed, err := core.ParseID(w)
			return err == nil && id == parsed
		default:
			return false
		}
	}
	return got == want
}
