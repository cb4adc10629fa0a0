package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	turnPrefix = "turn"
	turnIDSeq  = "turnseq"
)

// makeSessionPrefix generates the scan prefix for one session's turns.
// Format: prefix:sessionID\x00
// The NUL terminator keeps "notes" from matching "notes2" on a prefix scan.
func makeSessionPrefix(sessionID string) []byte {
	prefix := turnPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(sessionID)+1)
	buf = append(buf, prefix...)
	buf = append(buf, sessionID...)
	buf = append(buf, 0x00)
	return buf
}

// makeTurnKey generates a composite key for one turn.
// Format: prefix:sessionID\x00:timestamp:seq
// Timestamp and sequence are written in BigEndian order so lexicographic
// sort replays a session partition in ascending sort-key order.
func makeTurnKey(sessionID string, micro int64, seq uint64) []byte {
	prefix := makeSessionPrefix(sessionID)
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(micro))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
