package security

import (
	"fmt"

	"github.com/sgaunet/bullets"
)

// DebugFields writes a debug line with structured fields, running them
// through SanitizeMap first so callers never have to audit individual
// values for credentials. A nil logger drops the line.
func DebugFields(logger *bullets.Logger, msg string, fields map[string]any) {
	if logger == nil {
		return
	}

	logger.Debug(fmt.Sprintf("%s: %v", msg, SanitizeMap(fields)))
}
