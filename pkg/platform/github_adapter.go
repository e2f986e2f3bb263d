package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogithub "github.com/google/go-github/v69/github"
	ghclient "github.com/mergegate/mergegate/pkg/github"
	"github.com/sgaunet/bullets"
)

// GitHub mergeable_state values relevant to dry-run evaluation.
const (
	ghStateClean    = "clean"
	ghStateHasHooks = "has_hooks"
	ghStateDirty    = "dirty"
	ghStateUnknown  = "unknown"
	ghStateBlocked  = "blocked"
	ghStateBehind   = "behind"
	ghStateUnstable = "unstable"
	ghStateDraft    = "draft"

	// GitHub pull request states.
	ghPRStateClosed = "closed"
)

// GitHubAdapter wraps a GitHub client to implement the [Provider] interface.
// It translates between the platform-agnostic types and the GitHub-specific API.
type GitHubAdapter struct {
	client ghclient.APIClient
	log    *bullets.Logger
}

// NewGitHubAdapter creates a new GitHub adapter.
func NewGitHubAdapter(client ghclient.APIClient, log *bullets.Logger) *GitHubAdapter {
	return &GitHubAdapter{client: client, log: log}
}

// Initialize binds the provider to the repository named by the remote URL.
func (a *GitHubAdapter) Initialize(remoteURL string) error {
	if err := a.client.SetRepositoryFromURL(remoteURL); err != nil {
		return fmt.Errorf("failed to bind GitHub repository: %w", err)
	}
	return nil
}

// GetPullRequest fetches a pull request by number, converted to the
// platform-agnostic format.
func (a *GitHubAdapter) GetPullRequest(ctx context.Context, number int64) (*PullRequest, error) {
	pr, err := a.client.GetPullRequest(ctx, int(number))
	if err != nil {
		if errors.Is(err, ghclient.ErrPRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return a.convertPullRequest(ctx, pr), nil
}

// FindByBranch fetches an existing pull request by head and base branches.
func (a *GitHubAdapter) FindByBranch(ctx context.Context, sourceBranch, targetBranch string) (*PullRequest, error) {
	pr, err := a.client.GetPullRequestByBranch(ctx, sourceBranch, targetBranch)
	if err != nil {
		if errors.Is(err, ghclient.ErrPRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get pull request by branch: %w", err)
	}
	return a.convertPullRequest(ctx, pr), nil
}

// DryRunMerge evaluates current mergeability without mutating anything.
// GitHub computes mergeability asynchronously; an unknown state maps to
// unchecked and settles on a later poll.
func (a *GitHubAdapter) DryRunMerge(ctx context.Context, number int64) (*DryRunResult, error) {
	pr, err := a.client.GetPullRequest(ctx, int(number))
	if err != nil {
		if errors.Is(err, ghclient.ErrPRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to evaluate pull request: %w", err)
	}

	settings := a.client.MergeSettings()
	check, violations := evaluateMergeableState(pr.GetMergeableState(), settings.CanBypass)

	return &DryRunResult{
		Mergeable:         check == CheckMergeable,
		CheckStatus:       check,
		Violations:        violations,
		AllowedStrategies: githubStrategies(settings),
	}, nil
}

// SubmitMerge merges a pull request. The server re-validates eligibility.
func (a *GitHubAdapter) SubmitMerge(ctx context.Context, number int64, params MergeParams) (*MergeReceipt, error) {
	opts := ghclient.MergeOptions{
		Method:        string(params.Strategy),
		CommitTitle:   params.CommitTitle,
		CommitMessage: params.CommitMessage,
		SHA:           params.SHA,
	}

	if _, err := a.client.MergePullRequest(ctx, int(number), opts); err != nil {
		return nil, a.mapSubmitError(ctx, number, params, err)
	}

	receipt := &MergeReceipt{MergedAt: time.Now().UTC()}
	headBranch := ""
	if merged, gerr := a.client.GetPullRequest(ctx, int(number)); gerr == nil {
		if t := merged.GetMergedAt(); !t.Time.IsZero() {
			receipt.MergedAt = t.Time
		}
		receipt.MergedBy = merged.GetMergedBy().GetLogin()
		headBranch = merged.GetHead().GetRef()
	}

	// The server may be configured to prune merged branches on its own.
	if params.DeleteSourceBranch && headBranch != "" && !a.client.MergeSettings().DeleteBranchOnMerge {
		a.log.Infof("Deleting remote branch: %s", headBranch)
		if err := a.client.DeleteBranch(ctx, headBranch); err != nil {
			a.log.Warnf("Failed to delete remote branch: %v", err)
			// Don't fail the merge if branch deletion fails
		}
	}

	return receipt, nil
}

// mapSubmitError converts client merge failures into platform sentinels.
func (a *GitHubAdapter) mapSubmitError(ctx context.Context, number int64, params MergeParams, err error) error {
	switch {
	case errors.Is(err, ghclient.ErrStaleHead):
		return fmt.Errorf("%w: %w", ErrStaleHead, err)

	case errors.Is(err, ghclient.ErrMergeBlocked):
		// The merge endpoint reports an already merged PR the same way as
		// an ineligible one; disambiguate with a follow-up read.
		if current, gerr := a.client.GetPullRequest(ctx, int(number)); gerr == nil && current.GetMerged() {
			return fmt.Errorf("%w: #%d", ErrAlreadyMerged, number)
		}
		if params.Bypass {
			return fmt.Errorf("%w: %w", ErrBypassRefused, err)
		}
		return fmt.Errorf("%w: %w", ErrNotMergeable, err)

	case errors.Is(err, ghclient.ErrMergeForbidden):
		if params.Bypass {
			return fmt.Errorf("%w: %w", ErrBypassRefused, err)
		}
		return fmt.Errorf("failed to merge pull request: %w", err)

	default:
		return fmt.Errorf("failed to merge pull request: %w", err)
	}
}

// UpdateState transitions the pull request between open, closed, and draft.
func (a *GitHubAdapter) UpdateState(ctx context.Context, number int64, params StateParams) (*PullRequest, error) {
	current, err := a.client.GetPullRequest(ctx, int(number))
	if err != nil {
		if errors.Is(err, ghclient.ErrPRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	pr := current
	if desired := githubStateFor(params.State); desired != "" && mapGitHubState(current.GetState(), current.GetMerged()) != params.State {
		pr, err = a.client.UpdatePullRequestState(ctx, int(number), desired)
		if err != nil {
			if errors.Is(err, ghclient.ErrAlreadyMerged) {
				return nil, fmt.Errorf("%w: %w", ErrAlreadyMerged, err)
			}
			return nil, fmt.Errorf("failed to update pull request state: %w", err)
		}
	}

	if params.State == StateOpen && pr.GetDraft() != params.Draft {
		pr, err = a.client.SetDraft(ctx, int(number), params.Draft)
		if err != nil {
			if errors.Is(err, ghclient.ErrAlreadyMerged) {
				return nil, fmt.Errorf("%w: %w", ErrAlreadyMerged, err)
			}
			return nil, fmt.Errorf("failed to toggle draft: %w", err)
		}
	}

	return a.convertPullRequest(ctx, pr), nil
}

// githubStateFor maps a desired state to the GitHub pull request state.
func githubStateFor(state State) string {
	switch state {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return ""
	}
}

// RestoreSourceBranch recreates the head branch at its pre-merge SHA.
func (a *GitHubAdapter) RestoreSourceBranch(ctx context.Context, pr *PullRequest) error {
	if pr.SourceSHA == "" {
		return fmt.Errorf("%w: head SHA unknown", ErrUnsupported)
	}
	if err := a.client.CreateBranch(ctx, pr.SourceBranch, pr.SourceSHA); err != nil {
		return fmt.Errorf("failed to restore source branch: %w", err)
	}
	return nil
}

// DeleteSourceBranch removes the given branch from the remote.
func (a *GitHubAdapter) DeleteSourceBranch(ctx context.Context, branch string) error {
	if err := a.client.DeleteBranch(ctx, branch); err != nil {
		if errors.Is(err, ghclient.ErrBranchNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return fmt.Errorf("failed to delete source branch: %w", err)
	}
	return nil
}

// PlatformName returns "GitHub".
func (a *GitHubAdapter) PlatformName() string {
	return "GitHub"
}

// convertPullRequest converts a GitHub pull request to the platform-agnostic
// format. For closed and merged PRs the head branch existence is probed so
// the controller can suppress reopen/restore actions.
func (a *GitHubAdapter) convertPullRequest(ctx context.Context, pr *gogithub.PullRequest) *PullRequest {
	out := &PullRequest{
		Number:       int64(pr.GetNumber()),
		Title:        pr.GetTitle(),
		State:        mapGitHubState(pr.GetState(), pr.GetMerged()),
		Draft:        pr.GetDraft(),
		SourceBranch: pr.GetHead().GetRef(),
		TargetBranch: pr.GetBase().GetRef(),
		SourceSHA:    pr.GetHead().GetSHA(),
		MergedBy:     pr.GetMergedBy().GetLogin(),
		WebURL:       pr.GetHTMLURL(),
	}
	if t := pr.GetMergedAt(); !t.Time.IsZero() {
		mergedAt := t.Time
		out.MergedAt = &mergedAt
	}
	if out.State != StateOpen {
		exists, err := a.client.BranchExists(ctx, out.SourceBranch)
		// On probe failure assume the branch is still there; the server
		// stays authoritative when an action is actually submitted.
		out.SourceBranchDeleted = err == nil && !exists
	}
	return out
}

// mapGitHubState converts the GitHub state and merged flag to the platform
// state. GitHub reports merged PRs as closed with merged set.
func mapGitHubState(state string, merged bool) State {
	switch {
	case merged:
		return StateMerged
	case state == ghPRStateClosed:
		return StateClosed
	default:
		return StateOpen
	}
}

// evaluateMergeableState converts mergeable_state into a check status and
// the rule violations blocking the merge.
func evaluateMergeableState(state string, canBypass bool) (MergeCheckStatus, []RuleViolation) {
	switch state {
	case ghStateClean, ghStateHasHooks:
		return CheckMergeable, nil

	case ghStateUnknown, "":
		return CheckUnchecked, nil

	case ghStateDirty:
		return CheckConflict, nil

	case ghStateBehind:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "branch-behind",
			Message:    "Head branch is behind the base branch",
			Bypassable: true,
		}}

	case ghStateUnstable:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "checks-pending",
			Message:    "Required status checks have not all passed",
			Bypassable: true,
		}}

	case ghStateBlocked:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "protection-blocked",
			Message:    "Branch protection rules block this merge",
			Bypassable: canBypass,
		}}

	case ghStateDraft:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "draft",
			Message:    "Draft pull requests cannot be merged",
			Bypassable: false,
		}}

	default:
		return CheckNotMergeable, []RuleViolation{{
			Code:       state,
			Message:    "Merge blocked: " + state,
			Bypassable: false,
		}}
	}
}

// githubStrategies derives the allowed strategy set from repository settings.
func githubStrategies(settings ghclient.MergeSettings) StrategySet {
	set := StrategySet{}
	if settings.AllowMergeCommit {
		set = set.With(StrategyMergeCommit)
	}
	if settings.AllowSquashMerge {
		set = set.With(StrategySquash)
	}
	if settings.AllowRebaseMerge {
		set = set.With(StrategyRebase)
	}
	return set
}

// Compile-time interface check.
var _ Provider = (*GitHubAdapter)(nil)
