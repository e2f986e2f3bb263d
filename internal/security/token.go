// Package security provides credential wrapping, log sanitization, and
// token fingerprinting.
package security

const (
	// maskEmpty is the display form of an unset credential.
	maskEmpty = "[empty]"
	// maskRedacted replaces values that must not appear in output at all.
	maskRedacted = "[redacted]"
)

// SecureToken wraps a credential so it cannot leak through formatting.
// String renders the token as its fingerprint, which identifies the
// credential without revealing any part of it.
//
// Example:
//
//	token := NewSecureToken("glpat-secret123456")
//	fmt.Printf("%s", token)  // [token:1d2a9c3f]
//	fmt.Printf("%v", token)  // [token:1d2a9c3f]
//	fmt.Printf("%+v", token) // [token:1d2a9c3f]
type SecureToken struct {
	value string
}

// NewSecureToken wraps a raw credential string.
func NewSecureToken(token string) SecureToken {
	return SecureToken{value: token}
}

// String implements fmt.Stringer. Tokens format as their fingerprint, so
// accidental logging identifies the credential without exposing it.
func (t SecureToken) String() string {
	if t.value == "" {
		return maskEmpty
	}
	return "[token:" + t.Fingerprint() + "]"
}

// Value returns the wrapped credential for authentication. Never log the
// result.
func (t SecureToken) Value() string {
	return t.value
}

// IsEmpty reports whether the token is unset.
func (t SecureToken) IsEmpty() bool {
	return t.value == ""
}

// GoString implements fmt.GoStringer so %#v cannot leak the value either.
func (t SecureToken) GoString() string {
	return t.String()
}
