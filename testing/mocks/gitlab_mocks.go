// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	glpkg "github.com/mergegate/mergegate/pkg/gitlab"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabAPIClient is a mock implementation of gitlab.APIClient with call tracking.
type GitLabAPIClient struct {
	callLog

	// Configurable responses
	SetProjectFromURLError          error
	MergeSettingsValue              glpkg.MergeSettings
	GetMergeRequestResponse         *gitlab.MergeRequest
	GetMergeRequestError            error
	GetMergeRequestByBranchResponse *gitlab.MergeRequest
	GetMergeRequestByBranchError    error
	AcceptMergeRequestResponse      *gitlab.MergeRequest
	AcceptMergeRequestError         error
	UpdateMergeRequestStateResponse *gitlab.MergeRequest
	UpdateMergeRequestStateError    error
	SetDraftResponse                *gitlab.MergeRequest
	SetDraftError                   error
	CreateBranchError               error
	DeleteBranchError               error
	BranchExistsValue               bool
	BranchExistsError               error
}

// NewGitLabAPIClient creates a new mock GitLab API client.
func NewGitLabAPIClient() *GitLabAPIClient {
	return &GitLabAPIClient{}
}

// SetProjectFromURL implements gitlab.APIClient.
func (m *GitLabAPIClient) SetProjectFromURL(url string) error {
	m.record("SetProjectFromURL", map[string]any{
		"url": url,
	})
	return m.SetProjectFromURLError
}

// MergeSettings implements gitlab.APIClient.
func (m *GitLabAPIClient) MergeSettings() glpkg.MergeSettings {
	m.record("MergeSettings", map[string]any{})
	return m.MergeSettingsValue
}

// GetMergeRequest implements gitlab.APIClient.
func (m *GitLabAPIClient) GetMergeRequest(_ context.Context, mrIID int64) (*gitlab.MergeRequest, error) {
	m.record("GetMergeRequest", map[string]any{
		"mrIID": mrIID,
	})
	return m.GetMergeRequestResponse, m.GetMergeRequestError
}

// GetMergeRequestByBranch implements gitlab.APIClient.
func (m *GitLabAPIClient) GetMergeRequestByBranch(
	_ context.Context, sourceBranch, targetBranch string,
) (*gitlab.MergeRequest, error) {
	m.record("GetMergeRequestByBranch", map[string]any{
		"sourceBranch": sourceBranch,
		"targetBranch": targetBranch,
	})
	return m.GetMergeRequestByBranchResponse, m.GetMergeRequestByBranchError
}

// AcceptMergeRequest implements gitlab.APIClient.
func (m *GitLabAPIClient) AcceptMergeRequest(
	_ context.Context, mrIID int64, opts glpkg.AcceptOptions,
) (*gitlab.MergeRequest, error) {
	m.record("AcceptMergeRequest", map[string]any{
		"mrIID":              mrIID,
		"squash":             opts.Squash,
		"commitTitle":        opts.CommitTitle,
		"commitMessage":      opts.CommitMessage,
		"sha":                opts.SHA,
		"removeSourceBranch": opts.RemoveSourceBranch,
	})
	return m.AcceptMergeRequestResponse, m.AcceptMergeRequestError
}

// UpdateMergeRequestState implements gitlab.APIClient.
func (m *GitLabAPIClient) UpdateMergeRequestState(
	_ context.Context, mrIID int64, stateEvent string,
) (*gitlab.MergeRequest, error) {
	m.record("UpdateMergeRequestState", map[string]any{
		"mrIID":      mrIID,
		"stateEvent": stateEvent,
	})
	return m.UpdateMergeRequestStateResponse, m.UpdateMergeRequestStateError
}

// SetDraft implements gitlab.APIClient.
func (m *GitLabAPIClient) SetDraft(_ context.Context, mrIID int64, draft bool) (*gitlab.MergeRequest, error) {
	m.record("SetDraft", map[string]any{
		"mrIID": mrIID,
		"draft": draft,
	})
	return m.SetDraftResponse, m.SetDraftError
}

// CreateBranch implements gitlab.APIClient.
func (m *GitLabAPIClient) CreateBranch(_ context.Context, branch, ref string) error {
	m.record("CreateBranch", map[string]any{
		"branch": branch,
		"ref":    ref,
	})
	return m.CreateBranchError
}

// DeleteBranch implements gitlab.APIClient.
func (m *GitLabAPIClient) DeleteBranch(_ context.Context, branch string) error {
	m.record("DeleteBranch", map[string]any{
		"branch": branch,
	})
	return m.DeleteBranchError
}

// BranchExists implements gitlab.APIClient.
func (m *GitLabAPIClient) BranchExists(_ context.Context, branch string) (bool, error) {
	m.record("BranchExists", map[string]any{
		"branch": branch,
	})
	return m.BranchExistsValue, m.BranchExistsError
}

// Ensure GitLabAPIClient implements gitlab.APIClient interface.
var _ glpkg.APIClient = (*GitLabAPIClient)(nil)
