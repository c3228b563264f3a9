package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// hashKey returns prefix:sha256(parts). Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") hash differently.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data, used for source file contents.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
