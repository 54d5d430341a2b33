package recipe

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex-encoded SHA-256 digest of r's canonical
// ToString form. Two FrozenRecipes with the same Digest are
// interchangeable for every purpose this package cares about: identical
// particles, connections, and resolution state up to synthetic local
// names.
//
// No ecosystem hashing library turned up anywhere in the retrieved
// reference set for this purpose, so this stays on the standard
// library's crypto/sha256 rather than reaching for a third-party hash.
func (r *FrozenRecipe) Digest() string {
	sum := sha256.Sum256([]byte(r.ToString()))
	return hex.EncodeToString(sum[:])
}
