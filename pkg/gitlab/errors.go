// Package gitlab provides GitLab API client operations.
package gitlab

import "errors"

// Error definitions for GitLab API operations.
var (
	errTokenRequired    = errors.New("GITLAB_TOKEN environment variable is required")
	errInvalidURLFormat = errors.New("invalid GitLab URL format")
	errProjectNotSet    = errors.New("GitLab project not configured, call SetProjectFromURL first")
	errMRNotFound       = errors.New("no merge request found for branch")
	errMergeBlocked     = errors.New("merge request cannot be merged")
	errStaleHead        = errors.New("source branch head does not match expected SHA")
	errMergeForbidden   = errors.New("not allowed to merge this merge request")
	errAlreadyMerged    = errors.New("merge request is already merged")
	errBranchNotFound   = errors.New("branch not found")

	// Exported errors for testing and external use.
	ErrTokenRequired    = errTokenRequired
	ErrInvalidURLFormat = errInvalidURLFormat
	ErrProjectNotSet    = errProjectNotSet
	ErrMRNotFound       = errMRNotFound
	ErrMergeBlocked     = errMergeBlocked
	ErrStaleHead        = errStaleHead
	ErrMergeForbidden   = errMergeForbidden
	ErrAlreadyMerged    = errAlreadyMerged
	ErrBranchNotFound   = errBranchNotFound
)
