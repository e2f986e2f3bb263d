package github

import (
	"context"

	"github.com/google/go-github/v69/github"
)

// APIClient is the surface of the GitHub client that the platform adapter
// consumes. The mocks package implements it for black box adapter tests.
type APIClient interface {
	// SetRepositoryFromURL resolves a git remote URL (HTTPS or SSH form) to
	// the owner/repo pair and caches the repository merge settings.
	SetRepositoryFromURL(url string) error

	// MergeSettings returns the repository merge configuration cached by
	// SetRepositoryFromURL.
	MergeSettings() MergeSettings

	// GetPullRequest fetches a pull request with full details by number.
	// Returns ErrPRNotFound when no such pull request exists.
	GetPullRequest(ctx context.Context, prNumber int) (*github.PullRequest, error)

	// GetPullRequestByBranch fetches the most recently updated pull request
	// for the given head and base branches.
	// Returns ErrPRNotFound if no matching pull request exists.
	GetPullRequestByBranch(ctx context.Context, head, base string) (*github.PullRequest, error)

	// MergePullRequest merges a pull request.
	// Returns ErrStaleHead, ErrMergeBlocked, or ErrMergeForbidden depending
	// on why the server refused.
	MergePullRequest(ctx context.Context, prNumber int, opts MergeOptions) (*github.PullRequestMergeResult, error)

	// UpdatePullRequestState opens or closes a pull request.
	// Returns ErrAlreadyMerged for merged pull requests.
	UpdatePullRequestState(ctx context.Context, prNumber int, state string) (*github.PullRequest, error)

	// SetDraft toggles the draft flag through the GraphQL API.
	SetDraft(ctx context.Context, prNumber int, draft bool) (*github.PullRequest, error)

	// CreateBranch creates a branch ref at the given SHA.
	CreateBranch(ctx context.Context, branch, sha string) error

	// DeleteBranch deletes a branch from the remote repository.
	DeleteBranch(ctx context.Context, branch string) error

	// BranchExists reports whether the branch still exists on the remote.
	BranchExists(ctx context.Context, branch string) (bool, error)
}

// Ensure Client implements APIClient interface at compile time.
var _ APIClient = (*Client)(nil)
