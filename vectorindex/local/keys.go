package local

import (
	"encoding/binary"

	"github.com/poiesic/askit/core"
)

// Key layout:
//
//	chunk:<collection>\x00<id>            -> serialized DocumentChunk
//	csrc:<collection>\x00<source>\x00<id> -> empty (source membership index)
//
// The NUL separator keeps prefix scans exact: collection "alpha" never
// matches a scan for collection "alph".
const (
	chunkPrefix  = "chunk"
	sourcePrefix = "csrc"
	keySeparator = byte(0x00)
)

// makeChunkPrefix returns the scan prefix for all chunks in a collection.
func makeChunkPrefix(collection string) []byte {
	key := make([]byte, 0, len(chunkPrefix)+1+len(collection)+1)
	key = append(key, chunkPrefix...)
	key = append(key, ':')
	key = append(key, collection...)
	key = append(key, keySeparator)
	return key
}

// makeChunkKey returns the storage key for a single chunk.
func makeChunkKey(collection string, id core.ID) []byte {
	key := makeChunkPrefix(collection)
	key = binary.BigEndian.AppendUint64(key, uint64(id))
	return key
}

// makeSourcePrefix returns the scan prefix for all chunks of one source.
func makeSourcePrefix(collection, sourceID string) []byte {
	key := make([]byte, 0, len(sourcePrefix)+1+len(collection)+1+len(sourceID)+1)
	key = append(key, sourcePrefix...)
	key = append(key, ':')
	key = append(key, collection...)
	key = append(key, keySeparator)
	key = append(key, sourceID...)
	key = append(key, keySeparator)
	return key
}

// makeSourceKey returns the membership index key for one chunk.
func makeSourceKey(collection, sourceID string, id core.ID) []byte {
	key := makeSourcePrefix(collection, sourceID)
	key = binary.BigEndian.AppendUint64(key, uint64(id))
	return key
}

// chunkIDFromSourceKey extracts the chunk ID from a membership index key.
func chunkIDFromSourceKey(key []byte) (core.ID, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:])), true
}
