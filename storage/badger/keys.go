package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/shelf/core"
)

// Key prefixes for different data types. Prefixes are chosen so no prefix
// is a prefix of another, which keeps iteration scans disjoint per store.
const (
	fileRecordPrefix  = "frec"
	fileIDSeq         = "fseq"
	filePathPrefix    = "fpath"
	fileHashPrefix    = "fhash"
	fileTermPrefix    = "fterm"
	eventRecordPrefix = "erec"
	eventIDSeq        = "eseq"
	eventDatePrefix   = "edate"
	eventFilePrefix   = "efile"
	vectorPrefix      = "vrec"
	vectorMetaKey     = "vmeta"
	graphNodePrefix   = "gnod"
	graphEdgePrefix   = "gout"
	graphEdgeInPrefix = "gin"
	graphEdgeSeq      = "gseq"
	patternPrefix     = "prec"
	folderPrefix      = "srec"
)

// makeFileKey generates a key for a file record by ID.
func makeFileKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", fileRecordPrefix, id))
}

// makePathKey generates a key for the path index.
func makePathKey(path string) []byte {
	return []byte(filePathPrefix + ":" + path)
}

// makeHashKey generates a composite key for the content hash index.
// Format: prefix:hash:id
func makeHashKey(hash string, id core.ID) []byte {
	prefix := fileHashPrefix + ":" + hash + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialHashKey generates a partial key for hash lookups.
func makePartialHashKey(hash string) []byte {
	return []byte(fileHashPrefix + ":" + hash + ":")
}

// makeTermKey generates a composite key for the keyword posting index.
// Format: prefix:term:id
func makeTermKey(term string, id core.ID) []byte {
	prefix := fileTermPrefix + ":" + term + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialTermKey generates a partial key for posting scans.
func makePartialTermKey(term string) []byte {
	return []byte(fileTermPrefix + ":" + term + ":")
}

// makeEventKey generates a key for an event by ID.
func makeEventKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", eventRecordPrefix, id))
}

// makeEventDateKey generates a composite key for the event date index.
// Format: prefix:timestamp:id
func makeEventDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := eventDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEventDateKey generates a partial key for date range scans.
func makePartialEventDateKey(timestamp time.Time) []byte {
	prefix := eventDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeEventFileKey generates a composite key for the per-file event index.
// Format: prefix:fileID:id
func makeEventFileKey(fileID, id core.ID) []byte {
	prefix := eventFilePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEventFileKey generates a partial key for per-file scans.
func makePartialEventFileKey(fileID core.ID) []byte {
	prefix := eventFilePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	return buf
}

// makeVectorKey generates a key for a vector entry by file ID.
func makeVectorKey(fileID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", vectorPrefix, fileID))
}

// makeNodeKey generates a key for a graph node by ID.
func makeNodeKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", graphNodePrefix, id))
}

// makeEdgeKey generates a composite key for an outgoing edge.
// Format: prefix:source:type:target
func makeEdgeKey(source core.ID, edgeType core.EdgeType, target core.ID) []byte {
	prefix := graphEdgePrefix + ":"
	buf := make([]byte, len(prefix)+17)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(source))
	offset += 8
	buf[offset] = byte(edgeType)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(target))
	return buf
}

// makePartialEdgeKey generates a partial key for outgoing edge scans.
func makePartialEdgeKey(source core.ID) []byte {
	prefix := graphEdgePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(source))
	return buf
}

// makeEdgeInKey generates a composite key for the incoming edge index.
// Format: prefix:target:type:source
func makeEdgeInKey(target core.ID, edgeType core.EdgeType, source core.ID) []byte {
	prefix := graphEdgeInPrefix + ":"
	buf := make([]byte, len(prefix)+17)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(target))
	offset += 8
	buf[offset] = byte(edgeType)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(source))
	return buf
}

// makePartialEdgeInKey generates a partial key for incoming edge scans.
func makePartialEdgeInKey(target core.ID) []byte {
	prefix := graphEdgeInPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(target))
	return buf
}

// idFromKeySuffix reads the trailing BigEndian ID from a composite key.
func idFromKeySuffix(key []byte, prefixLen int) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[prefixLen:]))
}

// marshalTermCount encodes a posting term frequency.
func marshalTermCount(count int) []byte {
	return binary.AppendUvarint(nil, uint64(count))
}

// unmarshalTermCount decodes a posting term frequency.
func unmarshalTermCount(val []byte) (int, error) {
	count, n := binary.Uvarint(val)
	if n <= 0 {
		return 0, fmt.Errorf("malformed term count")
	}
	return int(count), nil
}

// makePatternKey generates a key for a pattern by ID.
func makePatternKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", patternPrefix, id))
}

// makeFolderKey generates a key for a smart folder spec by ID.
func makeFolderKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", folderPrefix, id))
}
