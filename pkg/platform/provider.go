package platform

import "context"

// Provider defines the unified interface for GitLab and GitHub pull request
// operations.
type Provider interface {
	// Initialize sets up the client from a git remote URL.
	Initialize(remoteURL string) error

	// GetPullRequest fetches a pull request by number.
	// Returns ErrNotFound when no such pull request exists.
	GetPullRequest(ctx context.Context, number int64) (*PullRequest, error)

	// FindByBranch fetches an existing pull request by source and target
	// branches. Returns ErrNotFound when none exists.
	FindByBranch(ctx context.Context, sourceBranch, targetBranch string) (*PullRequest, error)

	// DryRunMerge asks the server whether the pull request could merge right
	// now, without mutating anything. The result carries the check status,
	// conflicting files when known, rule violations, and the strategies the
	// target repository currently allows.
	DryRunMerge(ctx context.Context, number int64) (*DryRunResult, error)

	// SubmitMerge performs the merge. The server re-validates; a moved source
	// head yields ErrStaleHead, an ineligible pull request ErrNotMergeable,
	// and a refused bypass ErrBypassRefused.
	SubmitMerge(ctx context.Context, number int64, params MergeParams) (*MergeReceipt, error)

	// UpdateState transitions the pull request between open, closed, and
	// draft. Merged pull requests reject every transition with
	// ErrAlreadyMerged. Returns the refreshed pull request.
	UpdateState(ctx context.Context, number int64, params StateParams) (*PullRequest, error)

	// RestoreSourceBranch recreates the source branch of a merged pull
	// request at its pre-merge head. Returns ErrUnsupported on platforms
	// without a restore API.
	RestoreSourceBranch(ctx context.Context, pr *PullRequest) error

	// DeleteSourceBranch removes the given branch from the remote.
	DeleteSourceBranch(ctx context.Context, branch string) error

	// PlatformName returns "GitLab" or "GitHub".
	PlatformName() string
}
