package digest

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Hash is a finalized digest value.
type Hash []byte

// ParseHash decodes a hex encoded hash. Whitespace between digits is ignored.
func ParseHash(s string) (Hash, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}

// Equal returns true if the given hash is equal to this hash.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

// String returns the hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h)
}
