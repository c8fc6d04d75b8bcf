package badger

import (
	"encoding/binary"

	"github.com/poiesic/corpusit/core"
)

// Key prefixes for different data types
const (
	chunkPrefix    = "chunk"
	documentPrefix = "doc"
)

// makeChunkKey generates a key for one chunk of a document.
// Format: prefix:docID:index, both numbers BigEndian so iteration
// yields chunks in index order.
func makeChunkKey(docID core.ID, index int) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeDocumentChunkPrefix generates the key prefix covering all chunks
// of one document.
func makeDocumentChunkPrefix(docID core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeDocumentKey generates the document index key. The value stored
// under it is the document path.
func makeDocumentKey(docID core.ID) []byte {
	prefix := documentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}
