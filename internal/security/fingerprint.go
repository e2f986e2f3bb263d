package security

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// fingerprintBytes is the number of digest bytes kept in a fingerprint.
const fingerprintBytes = 4

// Fingerprint returns a short stable digest of the token that is safe to log.
// Identical tokens produce identical fingerprints, so debug output can answer
// "which credential was used" without revealing it.
func (t SecureToken) Fingerprint() string {
	if t.value == "" {
		return maskEmpty
	}
	sum := sha3.Sum224([]byte(t.value))
	return hex.EncodeToString(sum[:fingerprintBytes])
}
