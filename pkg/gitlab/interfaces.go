package gitlab

import (
	"context"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// APIClient is the surface of the GitLab client that the platform adapter
// consumes. The mocks package implements it for black box adapter tests.
type APIClient interface {
	// SetProjectFromURL resolves a git remote URL (HTTPS or SSH form) to the
	// project and caches its merge settings.
	SetProjectFromURL(url string) error

	// MergeSettings returns the project merge method and squash option
	// cached by SetProjectFromURL.
	MergeSettings() MergeSettings

	// GetMergeRequest fetches a merge request with full details by IID.
	// Returns ErrMRNotFound when no such merge request exists.
	GetMergeRequest(ctx context.Context, mrIID int64) (*gitlab.MergeRequest, error)

	// GetMergeRequestByBranch fetches the most recently updated merge request
	// for the given source and target branches.
	// Returns ErrMRNotFound if no matching merge request exists.
	GetMergeRequestByBranch(ctx context.Context, sourceBranch, targetBranch string) (*gitlab.MergeRequest, error)

	// AcceptMergeRequest merges a merge request.
	// Returns ErrStaleHead, ErrMergeBlocked, or ErrMergeForbidden depending
	// on why the server refused.
	AcceptMergeRequest(ctx context.Context, mrIID int64, opts AcceptOptions) (*gitlab.MergeRequest, error)

	// UpdateMergeRequestState closes or reopens a merge request.
	// Returns ErrAlreadyMerged for merged merge requests.
	UpdateMergeRequestState(ctx context.Context, mrIID int64, stateEvent string) (*gitlab.MergeRequest, error)

	// SetDraft toggles the draft flag by rewriting the title prefix.
	SetDraft(ctx context.Context, mrIID int64, draft bool) (*gitlab.MergeRequest, error)

	// CreateBranch creates a branch at the given ref.
	CreateBranch(ctx context.Context, branch, ref string) error

	// DeleteBranch removes a branch from the remote.
	DeleteBranch(ctx context.Context, branch string) error

	// BranchExists reports whether the branch still exists on the remote.
	BranchExists(ctx context.Context, branch string) (bool, error)
}

// Ensure Client implements APIClient interface at compile time.
var _ APIClient = (*Client)(nil)
