package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/geoflow/core"
)

// Key prefixes for different data types. The vector and graph stores
// share one backend, so every prefix must stay distinct.
const (
	vectorEntryPrefix = "vecrec"
	vectorDatePrefix  = "vecdat"
	graphNodePrefix   = "grfnod"
	graphEdgePrefix   = "grfedg"
	graphEdgeFromIdx  = "grfefr"
	graphEdgeToIdx    = "grfeto"
	graphDatePrefix   = "grfdat"
)

// makeVectorEntryKey generates a key for a vector entry by ID.
func makeVectorEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", vectorEntryPrefix, id))
}

// makeVectorDateKey generates a composite key for the processing-timestamp index.
// Format: prefix:timestamp:id
func makeVectorDateKey(timestamp time.Time, id core.ID) []byte {
	return makeDateKey(vectorDatePrefix, timestamp, id)
}

// makePartialVectorDateKey generates a partial key for date range scans.
func makePartialVectorDateKey(timestamp time.Time) []byte {
	return makePartialDateKey(vectorDatePrefix, timestamp)
}

// makeNodeKey generates a key for a graph node by ID.
func makeNodeKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", graphNodePrefix, id))
}

// makeEdgeKey generates a key for a graph edge by ID.
func makeEdgeKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", graphEdgePrefix, id))
}

// makeEdgeFromKey generates a composite key for the outgoing-edge index.
// Format: prefix:fromID:edgeID
func makeEdgeFromKey(from, edgeID core.ID) []byte {
	return makeIDPairKey(graphEdgeFromIdx, from, edgeID)
}

// makePartialEdgeFromKey generates a partial key for outgoing-edge scans.
func makePartialEdgeFromKey(from core.ID) []byte {
	return makePartialIDKey(graphEdgeFromIdx, from)
}

// makeEdgeToKey generates a composite key for the incoming-edge index.
// Format: prefix:toID:edgeID
func makeEdgeToKey(to, edgeID core.ID) []byte {
	return makeIDPairKey(graphEdgeToIdx, to, edgeID)
}

// makePartialEdgeToKey generates a partial key for incoming-edge scans.
func makePartialEdgeToKey(to core.ID) []byte {
	return makePartialIDKey(graphEdgeToIdx, to)
}

// makeGraphDateKey generates a composite key for the data-node date index.
// Format: prefix:timestamp:nodeID
func makeGraphDateKey(timestamp time.Time, id core.ID) []byte {
	return makeDateKey(graphDatePrefix, timestamp, id)
}

// makePartialGraphDateKey generates a partial key for data-node date scans.
func makePartialGraphDateKey(timestamp time.Time) []byte {
	return makePartialDateKey(graphDatePrefix, timestamp)
}

// makeDateKey builds prefix:timestamp:id with the timestamp and ID encoded
// BigEndian so lexicographic ordering matches chronological ordering.
func makeDateKey(prefix string, timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDateKey builds prefix:timestamp for range scans.
func makePartialDateKey(prefix string, timestamp time.Time) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeIDPairKey builds prefix:a:b with both IDs encoded BigEndian.
func makeIDPairKey(prefix string, a, b core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes per ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(a))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(b))
	return buf
}

// makePartialIDKey builds prefix:a for index scans.
func makePartialIDKey(prefix string, a core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(a))
	return buf
}
