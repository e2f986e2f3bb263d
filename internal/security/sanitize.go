package security

import (
	"regexp"
	"strings"
)

var (
	// Provider token shapes. Real tokens are longer than the minimums
	// here, the looser bounds also catch truncated fragments.
	gitlabTokenRE = regexp.MustCompile(`glpat-[a-zA-Z0-9_-]{6,}`)
	githubTokenRE = regexp.MustCompile(`gh[ops]_[a-zA-Z0-9]{20,}`)

	// Authorization headers, both Bearer and Basic.
	authHeaderRE = regexp.MustCompile(`(?i)authorization:\s*(?:bearer|basic)\s+[a-zA-Z0-9+/=_-]{10,}`)

	// Generic long base64-like strings.
	bearerTokenRE = regexp.MustCompile(`\b[A-Za-z0-9+/=]{40,200}\b`)
)

// providerPrefixes mark fragments the generic pattern must not touch, a
// leftover prefix means a provider token too short for its own pattern.
var providerPrefixes = []string{"glpat-", "ghp_", "gho_", "ghs_"}

// SanitizeString redacts credentials from a string: GitLab tokens
// (glpat-*), GitHub tokens (ghp_/gho_/ghs_*), authorization headers, and
// generic bearer-like strings.
func SanitizeString(s string) string {
	s = gitlabTokenRE.ReplaceAllString(s, "[gitlab-token-redacted]")
	s = githubTokenRE.ReplaceAllString(s, "[github-token-redacted]")
	s = authHeaderRE.ReplaceAllString(s, "Authorization: [redacted]")

	// The generic pattern runs last and only when no provider-prefixed
	// fragment survived, so it cannot mangle an already redacted string.
	for _, prefix := range providerPrefixes {
		if strings.Contains(s, prefix) {
			return s
		}
	}
	return bearerTokenRE.ReplaceAllString(s, "[token-redacted]")
}

// sanitizedError carries a redacted message while keeping the original
// error reachable for errors.Is and errors.As.
type sanitizedError struct {
	msg string
	err error
}

func (e *sanitizedError) Error() string { return e.msg }

func (e *sanitizedError) Unwrap() error { return e.err }

// SanitizeError returns an error whose message has [SanitizeString] applied.
// The original error chain stays intact, so sentinel matching on wrapped
// errors keeps working.
// Returns nil if err is nil.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}
	return &sanitizedError{msg: SanitizeString(err.Error()), err: err}
}

// sensitiveKeyParts flag map keys whose values are credentials by name.
var sensitiveKeyParts = []string{
	"token", "password", "secret", "api_key", "apikey",
	"auth", "credential", "authorization",
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// SanitizeMap redacts values under credential-looking keys and runs
// [SanitizeString] over the remaining string values.
// Returns nil if m is nil.
func SanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	result := make(map[string]any, len(m))
	for k, v := range m {
		if isSensitiveKey(k) {
			result[k] = maskRedacted
			continue
		}
		if s, ok := v.(string); ok {
			result[k] = SanitizeString(s)
		} else {
			result[k] = v
		}
	}
	return result
}
