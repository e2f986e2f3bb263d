package platform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/pkg/config"
	"github.com/mergegate/mergegate/pkg/git"
	ghclient "github.com/mergegate/mergegate/pkg/github"
	"github.com/mergegate/mergegate/pkg/gitlab"
	"github.com/mergegate/mergegate/pkg/platform"
	"github.com/mergegate/mergegate/testing/fixtures"
	"github.com/mergegate/mergegate/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitLabAdapter(mock *mocks.GitLabAPIClient) *platform.GitLabAdapter {
	return platform.NewGitLabAdapter(mock, logger.NoLogger())
}

func newGitHubAdapter(mock *mocks.GitHubAPIClient) *platform.GitHubAdapter {
	return platform.NewGitHubAdapter(mock, logger.NoLogger())
}

// --- GitLab Adapter Tests ---

func TestGitLabAdapter_DryRunMerge(t *testing.T) {
	t.Run("mergeable", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.MergeableMergeRequest()
		mock.MergeSettingsValue = gitlab.MergeSettings{Method: "merge", SquashOption: "default_off"}

		result, err := newGitLabAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.True(t, result.Mergeable)
		assert.Equal(t, platform.CheckMergeable, result.CheckStatus)
		assert.Empty(t, result.Violations)
		assert.Equal(t, []platform.Strategy{platform.StrategyMergeCommit, platform.StrategySquash},
			result.AllowedStrategies.Values())
	})

	t.Run("blocked by approvals", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.BlockedMergeRequest("not_approved")
		mock.MergeSettingsValue = gitlab.MergeSettings{Method: "merge", SquashOption: "never", CanBypass: true}

		result, err := newGitLabAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.False(t, result.Mergeable)
		assert.Equal(t, platform.CheckNotMergeable, result.CheckStatus)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "approvals-missing", result.Violations[0].Code)
		assert.True(t, result.Violations[0].Bypassable)
	})

	t.Run("conflict", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.ConflictedMergeRequest()

		result, err := newGitLabAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.Equal(t, platform.CheckConflict, result.CheckStatus)
	})

	t.Run("not found", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestError = gitlab.ErrMRNotFound

		_, err := newGitLabAdapter(mock).DryRunMerge(context.Background(), 123)
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrNotFound))
	})
}

func TestGitLabAdapter_SubmitMerge(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.AcceptMergeRequestResponse = fixtures.MergedMergeRequest()

		receipt, err := newGitLabAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy:    platform.StrategySquash,
			CommitTitle: "feat: add widget",
			SHA:         "abc123def456",
		})
		require.NoError(t, err)
		assert.Equal(t, "testuser", receipt.MergedBy)
		assert.False(t, receipt.MergedAt.IsZero())

		lastCall := mock.GetLastCall("AcceptMergeRequest")
		require.NotNil(t, lastCall)
		assert.Equal(t, true, lastCall.Args["squash"])
		assert.Equal(t, "abc123def456", lastCall.Args["sha"])
	})

	t.Run("stale head", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.AcceptMergeRequestError = gitlab.ErrStaleHead

		_, err := newGitLabAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategyMergeCommit,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrStaleHead))
	})

	t.Run("blocked because already merged", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.AcceptMergeRequestError = gitlab.ErrMergeBlocked
		mock.GetMergeRequestResponse = fixtures.MergedMergeRequest()

		_, err := newGitLabAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategyMergeCommit,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrAlreadyMerged))
	})

	t.Run("bypass refused", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.AcceptMergeRequestError = gitlab.ErrMergeBlocked
		mock.GetMergeRequestResponse = fixtures.BlockedMergeRequest("external_status_checks")

		_, err := newGitLabAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategyMergeCommit,
			Bypass:   true,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrBypassRefused))
	})

	t.Run("blocked without bypass", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.AcceptMergeRequestError = gitlab.ErrMergeBlocked
		mock.GetMergeRequestResponse = fixtures.BlockedMergeRequest("ci_must_pass")

		_, err := newGitLabAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategyMergeCommit,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrNotMergeable))
	})
}

func TestGitLabAdapter_UpdateState(t *testing.T) {
	t.Run("close", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.MergeableMergeRequest()
		mock.UpdateMergeRequestStateResponse = fixtures.ClosedMergeRequest()
		mock.BranchExistsValue = true

		pr, err := newGitLabAdapter(mock).UpdateState(context.Background(), 123, platform.StateParams{
			State: platform.StateClosed,
		})
		require.NoError(t, err)
		assert.Equal(t, platform.StateClosed, pr.State)
		assert.False(t, pr.SourceBranchDeleted)

		lastCall := mock.GetLastCall("UpdateMergeRequestState")
		require.NotNil(t, lastCall)
		assert.Equal(t, "close", lastCall.Args["stateEvent"])
	})

	t.Run("mark draft without state change", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.MergeableMergeRequest()
		mock.SetDraftResponse = fixtures.DraftMergeRequest()

		pr, err := newGitLabAdapter(mock).UpdateState(context.Background(), 123, platform.StateParams{
			State: platform.StateOpen,
			Draft: true,
		})
		require.NoError(t, err)
		assert.True(t, pr.Draft)
		assert.Equal(t, 0, mock.GetCallCount("UpdateMergeRequestState"))

		lastCall := mock.GetLastCall("SetDraft")
		require.NotNil(t, lastCall)
		assert.Equal(t, true, lastCall.Args["draft"])
	})

	t.Run("merged request rejects transitions", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestResponse = fixtures.MergedMergeRequest()
		mock.UpdateMergeRequestStateError = gitlab.ErrAlreadyMerged

		_, err := newGitLabAdapter(mock).UpdateState(context.Background(), 123, platform.StateParams{
			State: platform.StateClosed,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrAlreadyMerged))
	})
}

func TestGitLabAdapter_Branches(t *testing.T) {
	t.Run("restore source branch", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		pr := fixtures.MergedPullRequest()

		err := newGitLabAdapter(mock).RestoreSourceBranch(context.Background(), pr)
		require.NoError(t, err)

		lastCall := mock.GetLastCall("CreateBranch")
		require.NotNil(t, lastCall)
		assert.Equal(t, "feature-branch", lastCall.Args["branch"])
		assert.Equal(t, "abc123def456", lastCall.Args["ref"])
	})

	t.Run("restore without known head", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		pr := fixtures.MergedPullRequest()
		pr.SourceSHA = ""

		err := newGitLabAdapter(mock).RestoreSourceBranch(context.Background(), pr)
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrUnsupported))
		assert.Equal(t, 0, mock.GetCallCount("CreateBranch"))
	})

	t.Run("delete missing branch", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.DeleteBranchError = gitlab.ErrBranchNotFound

		err := newGitLabAdapter(mock).DeleteSourceBranch(context.Background(), "feature-branch")
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrNotFound))
	})
}

func TestGitLabAdapter_FindByBranch(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestByBranchResponse = fixtures.MergeableMergeRequest()

		pr, err := newGitLabAdapter(mock).FindByBranch(context.Background(), "feature-branch", "main")
		require.NoError(t, err)
		assert.Equal(t, int64(123), pr.Number)
		assert.Equal(t, platform.StateOpen, pr.State)
	})

	t.Run("not found", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestByBranchError = gitlab.ErrMRNotFound

		_, err := newGitLabAdapter(mock).FindByBranch(context.Background(), "feature-branch", "main")
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrNotFound))
	})

	t.Run("merged result probes branch", func(t *testing.T) {
		mock := mocks.NewGitLabAPIClient()
		mock.GetMergeRequestByBranchResponse = fixtures.MergedMergeRequest()
		mock.BranchExistsValue = false

		pr, err := newGitLabAdapter(mock).FindByBranch(context.Background(), "feature-branch", "main")
		require.NoError(t, err)
		assert.Equal(t, platform.StateMerged, pr.State)
		assert.True(t, pr.SourceBranchDeleted)
		assert.Equal(t, "testuser", pr.MergedBy)
		require.NotNil(t, pr.MergedAt)
	})
}

// --- GitHub Adapter Tests ---

func TestGitHubAdapter_DryRunMerge(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.CleanPullRequest()
		mock.MergeSettingsValue = ghclient.MergeSettings{
			AllowMergeCommit: true,
			AllowSquashMerge: true,
			AllowRebaseMerge: true,
		}

		result, err := newGitHubAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.True(t, result.Mergeable)
		assert.Equal(t, platform.CheckMergeable, result.CheckStatus)
		assert.Equal(t, 3, result.AllowedStrategies.Len())
	})

	t.Run("behind", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.BlockedGitHubPullRequest("behind")
		mock.MergeSettingsValue = ghclient.MergeSettings{AllowSquashMerge: true}

		result, err := newGitHubAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.Equal(t, platform.CheckNotMergeable, result.CheckStatus)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "branch-behind", result.Violations[0].Code)
		assert.True(t, result.Violations[0].Bypassable)
	})

	t.Run("blocked depends on admin", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.BlockedGitHubPullRequest("blocked")
		mock.MergeSettingsValue = ghclient.MergeSettings{AllowSquashMerge: true, CanBypass: true}

		result, err := newGitHubAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, "protection-blocked", result.Violations[0].Code)
		assert.True(t, result.Violations[0].Bypassable)
	})

	t.Run("unknown state is unsettled", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.BlockedGitHubPullRequest("unknown")

		result, err := newGitHubAdapter(mock).DryRunMerge(context.Background(), 123)
		require.NoError(t, err)
		assert.False(t, result.Mergeable)
		assert.Equal(t, platform.CheckUnchecked, result.CheckStatus)
		assert.Empty(t, result.Violations)
	})
}

func TestGitHubAdapter_SubmitMerge(t *testing.T) {
	t.Run("success deletes branch when asked", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.MergePullRequestResponse = fixtures.SuccessfulMergeResult()
		mock.GetPullRequestResponse = fixtures.MergedGitHubPullRequest()

		receipt, err := newGitHubAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy:           platform.StrategySquash,
			CommitTitle:        "feat: add widget",
			DeleteSourceBranch: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "testuser", receipt.MergedBy)

		mergeCall := mock.GetLastCall("MergePullRequest")
		require.NotNil(t, mergeCall)
		assert.Equal(t, "squash", mergeCall.Args["method"])

		deleteCall := mock.GetLastCall("DeleteBranch")
		require.NotNil(t, deleteCall)
		assert.Equal(t, "feature-branch", deleteCall.Args["branch"])
	})

	t.Run("skips deletion when server prunes", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.MergePullRequestResponse = fixtures.SuccessfulMergeResult()
		mock.GetPullRequestResponse = fixtures.MergedGitHubPullRequest()
		mock.MergeSettingsValue = ghclient.MergeSettings{DeleteBranchOnMerge: true}

		_, err := newGitHubAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy:           platform.StrategyMergeCommit,
			DeleteSourceBranch: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, mock.GetCallCount("DeleteBranch"))
	})

	t.Run("stale head", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.MergePullRequestError = ghclient.ErrStaleHead

		_, err := newGitHubAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategySquash,
			SHA:      "abc123def456",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrStaleHead))
	})

	t.Run("blocked because already merged", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.MergePullRequestError = ghclient.ErrMergeBlocked
		mock.GetPullRequestResponse = fixtures.MergedGitHubPullRequest()

		_, err := newGitHubAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategySquash,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrAlreadyMerged))
	})

	t.Run("bypass refused", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.MergePullRequestError = ghclient.ErrMergeForbidden

		_, err := newGitHubAdapter(mock).SubmitMerge(context.Background(), 123, platform.MergeParams{
			Strategy: platform.StrategySquash,
			Bypass:   true,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, platform.ErrBypassRefused))
	})
}

func TestGitHubAdapter_UpdateState(t *testing.T) {
	t.Run("reopen", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.ClosedGitHubPullRequest()
		mock.UpdatePullRequestStateResponse = fixtures.CleanPullRequest()

		pr, err := newGitHubAdapter(mock).UpdateState(context.Background(), 123, platform.StateParams{
			State: platform.StateOpen,
		})
		require.NoError(t, err)
		assert.Equal(t, platform.StateOpen, pr.State)

		lastCall := mock.GetLastCall("UpdatePullRequestState")
		require.NotNil(t, lastCall)
		assert.Equal(t, "open", lastCall.Args["state"])
	})

	t.Run("ready for review", func(t *testing.T) {
		mock := mocks.NewGitHubAPIClient()
		mock.GetPullRequestResponse = fixtures.DraftGitHubPullRequest()
		mock.SetDraftResponse = fixtures.CleanPullRequest()

		pr, err := newGitHubAdapter(mock).UpdateState(context.Background(), 123, platform.StateParams{
			State: platform.StateOpen,
			Draft: false,
		})
		require.NoError(t, err)
		assert.False(t, pr.Draft)

		lastCall := mock.GetLastCall("SetDraft")
		require.NotNil(t, lastCall)
		assert.Equal(t, false, lastCall.Args["draft"])
	})
}

// --- Factory Tests ---

func TestNewProvider(t *testing.T) {
	t.Run("gitlab", func(t *testing.T) {
		t.Setenv("GITLAB_TOKEN", "test-token")
		provider, err := platform.NewProvider(git.PlatformGitLab, &config.Config{}, logger.NoLogger())
		require.NoError(t, err)
		assert.Equal(t, "GitLab", provider.PlatformName())
	})

	t.Run("github", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "test-token")
		provider, err := platform.NewProvider(git.PlatformGitHub, &config.Config{}, logger.NoLogger())
		require.NoError(t, err)
		assert.Equal(t, "GitHub", provider.PlatformName())
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := platform.NewProvider(git.Platform("bitbucket"), &config.Config{}, logger.NoLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported platform")
	})
}

// --- Sentinel Error Tests ---

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{name: "ErrNotFound", err: platform.ErrNotFound},
		{name: "ErrNotMergeable", err: platform.ErrNotMergeable},
		{name: "ErrStaleHead", err: platform.ErrStaleHead},
		{name: "ErrAlreadyMerged", err: platform.ErrAlreadyMerged},
		{name: "ErrBypassRefused", err: platform.ErrBypassRefused},
		{name: "ErrUnknownStrategy", err: platform.ErrUnknownStrategy},
		{name: "ErrUnsupported", err: platform.ErrUnsupported},
	}

	for _, tt := range sentinels {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			wrapped := errors.Join(tt.err, errors.New("extra context"))
			assert.True(t, errors.Is(wrapped, tt.err))
		})
	}
}

// --- Mock Provider Tests ---

func TestMockProvider_CallTracking(t *testing.T) {
	t.Run("tracks multiple calls", func(t *testing.T) {
		mock := mocks.NewPlatformProvider()
		mock.DryRunMergeResponse = fixtures.MergeableDryRun()

		_, _ = mock.DryRunMerge(context.Background(), 42)
		_, _ = mock.DryRunMerge(context.Background(), 42)
		_ = mock.Initialize("url")

		assert.Equal(t, 2, mock.GetCallCount("DryRunMerge"))
		assert.Equal(t, 1, mock.GetCallCount("Initialize"))
		assert.Len(t, mock.GetCalls(), 3)
	})

	t.Run("reset clears calls", func(t *testing.T) {
		mock := mocks.NewPlatformProvider()
		_ = mock.Initialize("url")
		assert.Equal(t, 1, mock.GetCallCount("Initialize"))

		mock.Reset()
		assert.Equal(t, 0, mock.GetCallCount("Initialize"))
		assert.Empty(t, mock.GetCalls())
	})

	t.Run("submit merge records params", func(t *testing.T) {
		mock := mocks.NewPlatformProvider()
		mock.SubmitMergeResponse = fixtures.ValidMergeReceipt()

		_, err := mock.SubmitMerge(context.Background(), 42, platform.MergeParams{
			Strategy:           platform.StrategySquash,
			CommitTitle:        "feat: add widget",
			Bypass:             true,
			SHA:                "abc123def456",
			DeleteSourceBranch: true,
		})
		require.NoError(t, err)

		lastCall := mock.GetLastCall("SubmitMerge")
		require.NotNil(t, lastCall)
		assert.Equal(t, platform.StrategySquash, lastCall.Args["strategy"])
		assert.Equal(t, true, lastCall.Args["bypass"])
		assert.Equal(t, true, lastCall.Args["deleteSourceBranch"])
	})
}
