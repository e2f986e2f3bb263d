package commits

import "errors"

var (
	// ErrNoCommits is returned when no commits exist since the branches diverged.
	ErrNoCommits = errors.New("no commits found on branch")
)
