package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/slateworks/equipkb/core"
)

// Key prefixes for different data types. Index prefixes deliberately do not
// share a "<prefix>:" ancestor with their record prefix so that prefix scans
// over records never see index keys.
const (
	equipmentRecordPrefix = "eqprec"
	equipmentNamePrefix   = "eqpname"
	equipmentIDSeq        = "eqprecseq"
	documentRecordPrefix  = "docrec"
	documentEquipPrefix   = "docequip"
	documentIDSeq         = "docrecseq"
	chunkRecordPrefix     = "chkrec"
	chunkDocPrefix        = "chkdoc"
)

// makeEquipmentKey generates a key for an equipment record by ID.
func makeEquipmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", equipmentRecordPrefix, id))
}

// makeEquipmentNameKey generates a composite key for the per-tenant unique
// name index. Format: prefix:tenant:name
func makeEquipmentNameKey(tenantID, name string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", equipmentNamePrefix, tenantID, name))
}

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makeDocumentEquipKey generates a composite key for the document-by-equipment
// index. Format: prefix:equipmentID:documentID, both in BigEndian so
// lexicographic order follows insertion order within an equipment.
func makeDocumentEquipKey(equipmentID, documentID core.ID) []byte {
	prefix := documentEquipPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(equipmentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makePartialDocumentEquipKey generates a partial key for scanning all
// documents of one equipment.
func makePartialDocumentEquipKey(equipmentID core.ID) []byte {
	prefix := documentEquipPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(equipmentID))
	return buf
}

// makeChunkKey generates a key for a chunk record by its chunk id.
func makeChunkKey(chunkID string) []byte {
	return []byte(chunkRecordPrefix + ":" + chunkID)
}

// makeChunkDocKey generates a composite key for the chunk-by-document index.
// Format: prefix:documentID:chunkIndex:chunkID; documentID and chunkIndex in
// BigEndian so a prefix scan yields chunks in index order.
func makeChunkDocKey(documentID core.ID, chunkIndex int, chunkID string) []byte {
	prefix := chunkDocPrefix + ":"
	buf := make([]byte, len(prefix)+16+len(chunkID))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	offset += 8
	copy(buf[offset:], chunkID)
	return buf
}

// makePartialChunkDocKey generates a partial key for scanning all chunks of
// one document.
func makePartialChunkDocKey(documentID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}
