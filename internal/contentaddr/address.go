// Package contentaddr maps logical cache keys to fixed-length storage identifiers.
package contentaddr

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
)

// Size is the length of a storage identifier.
const Size = sha256.Size * 2

// Address returns the lowercase hex sha256 of key.
// The empty key is valid and yields the hash of the empty string.
func Address(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// Path returns the slash-separated storage path of key below dir.
func Path(dir, key string) string {
	return path.Join(dir, Address(key))
}

// Valid reports whether id looks like a storage identifier produced by Address.
func Valid(id string) bool {
	if len(id) != Size {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
