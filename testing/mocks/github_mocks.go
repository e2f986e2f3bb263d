package mocks

import (
	"context"

	"github.com/google/go-github/v69/github"
	ghpkg "github.com/mergegate/mergegate/pkg/github"
)

// GitHubAPIClient is a mock implementation of github.APIClient with call tracking.
type GitHubAPIClient struct {
	callLog

	// Configurable responses
	SetRepositoryFromURLError      error
	MergeSettingsValue             ghpkg.MergeSettings
	GetPullRequestResponse         *github.PullRequest
	GetPullRequestError            error
	GetPullRequestByBranchResponse *github.PullRequest
	GetPullRequestByBranchError    error
	MergePullRequestResponse       *github.PullRequestMergeResult
	MergePullRequestError          error
	UpdatePullRequestStateResponse *github.PullRequest
	UpdatePullRequestStateError    error
	SetDraftResponse               *github.PullRequest
	SetDraftError                  error
	CreateBranchError              error
	DeleteBranchError              error
	BranchExistsValue              bool
	BranchExistsError              error
}

// NewGitHubAPIClient creates a new mock GitHub API client.
func NewGitHubAPIClient() *GitHubAPIClient {
	return &GitHubAPIClient{}
}

// SetRepositoryFromURL implements github.APIClient.
func (m *GitHubAPIClient) SetRepositoryFromURL(url string) error {
	m.record("SetRepositoryFromURL", map[string]any{
		"url": url,
	})
	return m.SetRepositoryFromURLError
}

// MergeSettings implements github.APIClient.
func (m *GitHubAPIClient) MergeSettings() ghpkg.MergeSettings {
	m.record("MergeSettings", map[string]any{})
	return m.MergeSettingsValue
}

// GetPullRequest implements github.APIClient.
func (m *GitHubAPIClient) GetPullRequest(_ context.Context, prNumber int) (*github.PullRequest, error) {
	m.record("GetPullRequest", map[string]any{
		"prNumber": prNumber,
	})
	return m.GetPullRequestResponse, m.GetPullRequestError
}

// GetPullRequestByBranch implements github.APIClient.
func (m *GitHubAPIClient) GetPullRequestByBranch(_ context.Context, head, base string) (*github.PullRequest, error) {
	m.record("GetPullRequestByBranch", map[string]any{
		"head": head,
		"base": base,
	})
	return m.GetPullRequestByBranchResponse, m.GetPullRequestByBranchError
}

// MergePullRequest implements github.APIClient.
func (m *GitHubAPIClient) MergePullRequest(
	_ context.Context, prNumber int, opts ghpkg.MergeOptions,
) (*github.PullRequestMergeResult, error) {
	m.record("MergePullRequest", map[string]any{
		"prNumber":      prNumber,
		"method":        opts.Method,
		"commitTitle":   opts.CommitTitle,
		"commitMessage": opts.CommitMessage,
		"sha":           opts.SHA,
	})
	return m.MergePullRequestResponse, m.MergePullRequestError
}

// UpdatePullRequestState implements github.APIClient.
func (m *GitHubAPIClient) UpdatePullRequestState(
	_ context.Context, prNumber int, state string,
) (*github.PullRequest, error) {
	m.record("UpdatePullRequestState", map[string]any{
		"prNumber": prNumber,
		"state":    state,
	})
	return m.UpdatePullRequestStateResponse, m.UpdatePullRequestStateError
}

// SetDraft implements github.APIClient.
func (m *GitHubAPIClient) SetDraft(_ context.Context, prNumber int, draft bool) (*github.PullRequest, error) {
	m.record("SetDraft", map[string]any{
		"prNumber": prNumber,
		"draft":    draft,
	})
	return m.SetDraftResponse, m.SetDraftError
}

// CreateBranch implements github.APIClient.
func (m *GitHubAPIClient) CreateBranch(_ context.Context, branch, sha string) error {
	m.record("CreateBranch", map[string]any{
		"branch": branch,
		"sha":    sha,
	})
	return m.CreateBranchError
}

// DeleteBranch implements github.APIClient.
func (m *GitHubAPIClient) DeleteBranch(_ context.Context, branch string) error {
	m.record("DeleteBranch", map[string]any{
		"branch": branch,
	})
	return m.DeleteBranchError
}

// BranchExists implements github.APIClient.
func (m *GitHubAPIClient) BranchExists(_ context.Context, branch string) (bool, error) {
	m.record("BranchExists", map[string]any{
		"branch": branch,
	})
	return m.BranchExistsValue, m.BranchExistsError
}

// Ensure GitHubAPIClient implements github.APIClient interface.
var _ ghpkg.APIClient = (*GitHubAPIClient)(nil)
