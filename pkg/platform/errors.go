package platform

import "errors"

// Sentinel errors for platform operations.
var (
	// ErrNotFound is returned when no pull request matches the lookup.
	ErrNotFound = errors.New("pull request not found")

	// ErrNotMergeable is returned when the server refuses a merge because the
	// pull request is not eligible.
	ErrNotMergeable = errors.New("pull request is not mergeable")

	// ErrStaleHead is returned when the source branch moved since the last
	// evaluation and the merge was submitted with the old SHA.
	ErrStaleHead = errors.New("source branch head changed since last evaluation")

	// ErrAlreadyMerged is returned for state transitions or merges on an
	// already merged pull request.
	ErrAlreadyMerged = errors.New("pull request is already merged")

	// ErrBypassRefused is returned when the server rejects a bypass merge,
	// typically because a violation is not bypassable for the acting user.
	ErrBypassRefused = errors.New("server refused to bypass rule violations")

	// ErrUnknownStrategy is returned when a merge strategy string is outside
	// the supported set.
	ErrUnknownStrategy = errors.New("unknown merge strategy")

	// ErrUnsupported is returned for operations the platform has no API for.
	ErrUnsupported = errors.New("operation not supported on this platform")
)
