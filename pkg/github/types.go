package github

import (
	"net/http"

	"github.com/google/go-github/v69/github"
	"github.com/mergegate/mergegate/internal/security"
	"github.com/sgaunet/bullets"
)

// Constants for GitHub API operations.
const (
	minURLParts = 2

	// Pull request states as reported by the API.
	prStateOpen   = "open"
	prStateClosed = "closed"

	// Mergeable state values reported on a pull request.
	mergeableStateClean    = "clean"
	mergeableStateHasHooks = "has_hooks"
	mergeableStateDirty    = "dirty"
	mergeableStateUnknown  = "unknown"
	mergeableStateBlocked  = "blocked"
	mergeableStateBehind   = "behind"
	mergeableStateUnstable = "unstable"
	mergeableStateDraft    = "draft"
)

// Client represents a GitHub API client wrapper.
type Client struct {
	client *github.Client
	// httpClient carries the oauth2 transport, reused for GraphQL calls the
	// REST API has no equivalent for.
	httpClient *http.Client
	owner      string
	repo       string
	settings   MergeSettings
	token      security.SecureToken
	log        *bullets.Logger
}

// MergeSettings describes the repository-level merge configuration that
// bounds which strategies a pull request may use.
type MergeSettings struct {
	AllowMergeCommit    bool
	AllowSquashMerge    bool
	AllowRebaseMerge    bool
	DeleteBranchOnMerge bool
	// CanBypass reports whether the token holder has admin access and may
	// therefore override bypassable branch protection rules.
	CanBypass bool
}

// MergeOptions holds parameters for merging a pull request.
type MergeOptions struct {
	// Method is "merge", "squash", or "rebase".
	Method        string
	CommitTitle   string
	CommitMessage string
	// SHA, when set, makes the server reject the merge if the head branch
	// moved since this value was observed.
	SHA string
}
