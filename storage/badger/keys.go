package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/shoplore/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	documentSlugPrefix   = "docslug"
	dialogRecordPrefix   = "diarec"
	dialogChatPrefix     = "diachat"
	dialogRecordIDSeq    = "diaseq"
	manifestKey          = "ingman"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makeDocumentSlugKey generates a key for document lookup by slug.
func makeDocumentSlugKey(slug string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentSlugPrefix, slug))
}

// makeDialogRecordKey generates a key for a dialog record by ID.
func makeDialogRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", dialogRecordPrefix, id))
}

// makeDialogChatKey generates a composite key for the per-chat time index.
// Format: prefix:chatID:timestamp:id
func makeDialogChatKey(chatID int64, timestamp time.Time, id core.ID) []byte {
	prefix := dialogChatPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for chatID, timestamp, and ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly.
	// Negative chat IDs sort after positive ones, but every scan fixes
	// the full 8-byte chat prefix first, so cross-chat order never matters.
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDialogChatKey generates a partial key for time range queries within a chat.
// Format: prefix:chatID:timestamp
func makePartialDialogChatKey(chatID int64, timestamp time.Time) []byte {
	prefix := dialogChatPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for chatID + 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeDialogChatScanPrefix generates the prefix shared by all index keys of one chat.
// Format: prefix:chatID
func makeDialogChatScanPrefix(chatID int64) []byte {
	prefix := dialogChatPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for chatID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	return buf
}

// makeManifestKey generates the key for the ingest manifest singleton.
func makeManifestKey() []byte {
	return []byte(manifestKey)
}
