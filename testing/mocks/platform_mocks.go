package mocks

import (
	"context"

	"github.com/mergegate/mergegate/pkg/platform"
)

// PlatformProvider is a mock implementation of platform.Provider with call tracking.
// The Func hooks take precedence over the static responses when set, which lets
// polling tests return different results on successive calls.
type PlatformProvider struct {
	callLog

	// Configurable responses
	InitializeError          error
	GetPullRequestResponse   *platform.PullRequest
	GetPullRequestError      error
	GetPullRequestFunc       func(number int64) (*platform.PullRequest, error)
	FindByBranchResponse     *platform.PullRequest
	FindByBranchError        error
	DryRunMergeResponse      *platform.DryRunResult
	DryRunMergeError         error
	DryRunMergeFunc          func(number int64) (*platform.DryRunResult, error)
	SubmitMergeResponse      *platform.MergeReceipt
	SubmitMergeError         error
	UpdateStateResponse      *platform.PullRequest
	UpdateStateError         error
	RestoreSourceBranchError error
	DeleteSourceBranchError  error
	PlatformNameValue        string
}

// NewPlatformProvider creates a new mock platform provider.
func NewPlatformProvider() *PlatformProvider {
	return &PlatformProvider{
		PlatformNameValue: "MockPlatform",
	}
}

// Initialize implements platform.Provider.
func (m *PlatformProvider) Initialize(remoteURL string) error {
	m.record("Initialize", map[string]any{
		"remoteURL": remoteURL,
	})
	return m.InitializeError
}

// GetPullRequest implements platform.Provider.
func (m *PlatformProvider) GetPullRequest(_ context.Context, number int64) (*platform.PullRequest, error) {
	m.record("GetPullRequest", map[string]any{
		"number": number,
	})
	if m.GetPullRequestFunc != nil {
		return m.GetPullRequestFunc(number)
	}
	return m.GetPullRequestResponse, m.GetPullRequestError
}

// FindByBranch implements platform.Provider.
func (m *PlatformProvider) FindByBranch(
	_ context.Context, sourceBranch, targetBranch string,
) (*platform.PullRequest, error) {
	m.record("FindByBranch", map[string]any{
		"sourceBranch": sourceBranch,
		"targetBranch": targetBranch,
	})
	return m.FindByBranchResponse, m.FindByBranchError
}

// DryRunMerge implements platform.Provider.
func (m *PlatformProvider) DryRunMerge(_ context.Context, number int64) (*platform.DryRunResult, error) {
	m.record("DryRunMerge", map[string]any{
		"number": number,
	})
	if m.DryRunMergeFunc != nil {
		return m.DryRunMergeFunc(number)
	}
	return m.DryRunMergeResponse, m.DryRunMergeError
}

// SubmitMerge implements platform.Provider.
func (m *PlatformProvider) SubmitMerge(
	_ context.Context, number int64, params platform.MergeParams,
) (*platform.MergeReceipt, error) {
	m.record("SubmitMerge", map[string]any{
		"number":             number,
		"strategy":           params.Strategy,
		"commitTitle":        params.CommitTitle,
		"commitMessage":      params.CommitMessage,
		"bypass":             params.Bypass,
		"sha":                params.SHA,
		"deleteSourceBranch": params.DeleteSourceBranch,
	})
	return m.SubmitMergeResponse, m.SubmitMergeError
}

// UpdateState implements platform.Provider.
func (m *PlatformProvider) UpdateState(
	_ context.Context, number int64, params platform.StateParams,
) (*platform.PullRequest, error) {
	m.record("UpdateState", map[string]any{
		"number": number,
		"state":  params.State,
		"draft":  params.Draft,
	})
	return m.UpdateStateResponse, m.UpdateStateError
}

// RestoreSourceBranch implements platform.Provider.
func (m *PlatformProvider) RestoreSourceBranch(_ context.Context, pr *platform.PullRequest) error {
	m.record("RestoreSourceBranch", map[string]any{
		"number":       pr.Number,
		"sourceBranch": pr.SourceBranch,
		"sourceSHA":    pr.SourceSHA,
	})
	return m.RestoreSourceBranchError
}

// DeleteSourceBranch implements platform.Provider.
func (m *PlatformProvider) DeleteSourceBranch(_ context.Context, branch string) error {
	m.record("DeleteSourceBranch", map[string]any{
		"branch": branch,
	})
	return m.DeleteSourceBranchError
}

// PlatformName implements platform.Provider.
func (m *PlatformProvider) PlatformName() string {
	return m.PlatformNameValue
}

// Ensure PlatformProvider implements platform.Provider interface.
var _ platform.Provider = (*PlatformProvider)(nil)
