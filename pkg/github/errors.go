package github

import "errors"

// Error definitions for GitHub API operations.
var (
	errTokenRequired     = errors.New("GITHUB_TOKEN environment variable is required")
	errInvalidURLFormat  = errors.New("invalid GitHub URL format")
	errRepoNotSet        = errors.New("GitHub repository not configured, call SetRepositoryFromURL first")
	errPRNotFound        = errors.New("no pull request found for branch")
	errMergeBlocked      = errors.New("pull request cannot be merged")
	errStaleHead         = errors.New("head branch was modified since last evaluation")
	errMergeForbidden    = errors.New("not allowed to merge this pull request")
	errAlreadyMerged     = errors.New("pull request is already merged")
	errBranchNotFound    = errors.New("branch not found")
	errDraftToggleFailed = errors.New("failed to toggle draft status")

	// ErrTokenRequired is returned when GITHUB_TOKEN environment variable is missing.
	ErrTokenRequired = errTokenRequired
	// ErrInvalidURLFormat is returned when the GitHub URL format is invalid.
	ErrInvalidURLFormat = errInvalidURLFormat
	// ErrRepoNotSet is returned when an operation runs before SetRepositoryFromURL.
	ErrRepoNotSet = errRepoNotSet
	// ErrPRNotFound is returned when no pull request is found for the branch.
	ErrPRNotFound = errPRNotFound
	// ErrMergeBlocked is returned when the server refuses to merge an ineligible pull request.
	ErrMergeBlocked = errMergeBlocked
	// ErrStaleHead is returned when the head branch moved since the expected SHA was observed.
	ErrStaleHead = errStaleHead
	// ErrMergeForbidden is returned when the token lacks permission to merge.
	ErrMergeForbidden = errMergeForbidden
	// ErrAlreadyMerged is returned for operations on an already merged pull request.
	ErrAlreadyMerged = errAlreadyMerged
	// ErrBranchNotFound is returned when a branch operation targets a missing branch.
	ErrBranchNotFound = errBranchNotFound
	// ErrDraftToggleFailed is returned when the GraphQL draft mutation is rejected.
	ErrDraftToggleFailed = errDraftToggleFailed
)
