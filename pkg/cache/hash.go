package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a stage-prefixed content key: "prefix:hash(parts...)".
// Parts are JSON-marshaled before hashing so any change to a viewport size,
// sim parameter, or format string yields a different key.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data. Pipeline stages use it to fingerprint
// payloads, graphs, and layouts; the full 64-character digest keeps distinct
// inputs from ever sharing a key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
