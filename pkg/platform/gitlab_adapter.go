package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/mergegate/mergegate/pkg/gitlab"
	"github.com/sgaunet/bullets"
	gogitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLab detailed_merge_status values relevant to dry-run evaluation.
const (
	glStatusMergeable       = "mergeable"
	glStatusChecking        = "checking"
	glStatusUnchecked       = "unchecked"
	glStatusPreparing       = "preparing"
	glStatusApprovalsSync   = "approvals_syncing"
	glStatusConflict        = "conflict"
	glStatusNeedRebase      = "need_rebase"
	glStatusBrokenStatus    = "broken_status"
	glStatusNotApproved     = "not_approved"
	glStatusCIMustPass      = "ci_must_pass"
	glStatusCIRunning       = "ci_still_running"
	glStatusDiscussions     = "discussions_not_resolved"
	glStatusChangesRequired = "requested_changes"
	glStatusBlocked         = "blocked_status"
	glStatusExternalChecks  = "external_status_checks"
	glStatusDraft           = "draft_status"
	glStatusJiraMissing     = "jira_association_missing"

	// GitLab merge request states.
	glStateOpened = "opened"
	glStateClosed = "closed"
	glStateMerged = "merged"
	glStateLocked = "locked"

	// GitLab project merge methods.
	glMethodMerge       = "merge"
	glMethodRebaseMerge = "rebase_merge"
	glMethodFastForward = "ff"

	// GitLab squash options.
	glSquashNever  = "never"
	glSquashAlways = "always"
)

// GitLabAdapter wraps a GitLab client to implement the Provider interface.
type GitLabAdapter struct {
	client gitlab.APIClient
	log    *bullets.Logger
}

// NewGitLabAdapter creates a new GitLab adapter.
func NewGitLabAdapter(client gitlab.APIClient, log *bullets.Logger) *GitLabAdapter {
	return &GitLabAdapter{client: client, log: log}
}

// Initialize binds the provider to the project named by the remote URL.
func (a *GitLabAdapter) Initialize(remoteURL string) error {
	if err := a.client.SetProjectFromURL(remoteURL); err != nil {
		return fmt.Errorf("failed to bind GitLab project: %w", err)
	}
	return nil
}

// GetPullRequest fetches a merge request by IID, converted to the
// platform-agnostic format.
func (a *GitLabAdapter) GetPullRequest(ctx context.Context, number int64) (*PullRequest, error) {
	mr, err := a.client.GetMergeRequest(ctx, number)
	if err != nil {
		if errors.Is(err, gitlab.ErrMRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}
	return a.convertMergeRequest(ctx, mr), nil
}

// FindByBranch fetches an existing merge request by source and target branches.
func (a *GitLabAdapter) FindByBranch(ctx context.Context, sourceBranch, targetBranch string) (*PullRequest, error) {
	mr, err := a.client.GetMergeRequestByBranch(ctx, sourceBranch, targetBranch)
	if err != nil {
		if errors.Is(err, gitlab.ErrMRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get merge request by branch: %w", err)
	}
	return a.convertMergeRequest(ctx, mr), nil
}

// DryRunMerge evaluates current mergeability without mutating anything.
func (a *GitLabAdapter) DryRunMerge(ctx context.Context, number int64) (*DryRunResult, error) {
	mr, err := a.client.GetMergeRequest(ctx, number)
	if err != nil {
		if errors.Is(err, gitlab.ErrMRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to evaluate merge request: %w", err)
	}

	settings := a.client.MergeSettings()
	check, violations := evaluateDetailedStatus(mr.DetailedMergeStatus, mr.HasConflicts, settings.CanBypass)
	a.log.Debug(fmt.Sprintf("Dry-run for !%d: %s -> %s", number, mr.DetailedMergeStatus, check))

	return &DryRunResult{
		Mergeable:         check == CheckMergeable,
		CheckStatus:       check,
		Violations:        violations,
		AllowedStrategies: gitlabStrategies(settings),
	}, nil
}

// SubmitMerge merges a merge request. The server re-validates eligibility.
func (a *GitLabAdapter) SubmitMerge(ctx context.Context, number int64, params MergeParams) (*MergeReceipt, error) {
	opts := gitlab.AcceptOptions{
		Squash:             params.Strategy == StrategySquash,
		CommitTitle:        params.CommitTitle,
		CommitMessage:      params.CommitMessage,
		SHA:                params.SHA,
		RemoveSourceBranch: params.DeleteSourceBranch,
	}

	mr, err := a.client.AcceptMergeRequest(ctx, number, opts)
	if err != nil {
		return nil, a.mapSubmitError(ctx, number, params, err)
	}

	receipt := &MergeReceipt{}
	if mr.MergedAt != nil {
		receipt.MergedAt = *mr.MergedAt
	}
	if mr.MergeUser != nil {
		receipt.MergedBy = mr.MergeUser.Username
	}
	return receipt, nil
}

// mapSubmitError converts client merge failures into platform sentinels.
func (a *GitLabAdapter) mapSubmitError(ctx context.Context, number int64, params MergeParams, err error) error {
	switch {
	case errors.Is(err, gitlab.ErrStaleHead):
		return fmt.Errorf("%w: %w", ErrStaleHead, err)

	case errors.Is(err, gitlab.ErrMergeBlocked):
		// The accept endpoint reports an already merged MR the same way as
		// an ineligible one; disambiguate with a follow-up read.
		if current, gerr := a.client.GetMergeRequest(ctx, number); gerr == nil &&
			mapGitLabState(current.State) == StateMerged {
			return fmt.Errorf("%w: !%d", ErrAlreadyMerged, number)
		}
		if params.Bypass {
			return fmt.Errorf("%w: %w", ErrBypassRefused, err)
		}
		return fmt.Errorf("%w: %w", ErrNotMergeable, err)

	case errors.Is(err, gitlab.ErrMergeForbidden):
		if params.Bypass {
			return fmt.Errorf("%w: %w", ErrBypassRefused, err)
		}
		return fmt.Errorf("failed to merge merge request: %w", err)

	default:
		return fmt.Errorf("failed to merge merge request: %w", err)
	}
}

// UpdateState transitions the merge request between open, closed, and draft.
func (a *GitLabAdapter) UpdateState(ctx context.Context, number int64, params StateParams) (*PullRequest, error) {
	current, err := a.client.GetMergeRequest(ctx, number)
	if err != nil {
		if errors.Is(err, gitlab.ErrMRNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}

	mr := current
	if desired := stateEventFor(params.State); desired != "" && mapGitLabState(current.State) != params.State {
		mr, err = a.client.UpdateMergeRequestState(ctx, number, desired)
		if err != nil {
			if errors.Is(err, gitlab.ErrAlreadyMerged) {
				return nil, fmt.Errorf("%w: %w", ErrAlreadyMerged, err)
			}
			return nil, fmt.Errorf("failed to update merge request state: %w", err)
		}
	}

	if params.State == StateOpen && mr.Draft != params.Draft {
		mr, err = a.client.SetDraft(ctx, number, params.Draft)
		if err != nil {
			if errors.Is(err, gitlab.ErrAlreadyMerged) {
				return nil, fmt.Errorf("%w: %w", ErrAlreadyMerged, err)
			}
			return nil, fmt.Errorf("failed to toggle draft: %w", err)
		}
	}

	return a.convertMergeRequest(ctx, mr), nil
}

// stateEventFor maps a desired state to the GitLab state event.
func stateEventFor(state State) string {
	switch state {
	case StateOpen:
		return "reopen"
	case StateClosed:
		return "close"
	default:
		return ""
	}
}

// RestoreSourceBranch recreates the source branch at its pre-merge head.
func (a *GitLabAdapter) RestoreSourceBranch(ctx context.Context, pr *PullRequest) error {
	if pr.SourceSHA == "" {
		return fmt.Errorf("%w: source head SHA unknown", ErrUnsupported)
	}
	if err := a.client.CreateBranch(ctx, pr.SourceBranch, pr.SourceSHA); err != nil {
		return fmt.Errorf("failed to restore source branch: %w", err)
	}
	return nil
}

// DeleteSourceBranch removes the given branch from the remote.
func (a *GitLabAdapter) DeleteSourceBranch(ctx context.Context, branch string) error {
	if err := a.client.DeleteBranch(ctx, branch); err != nil {
		if errors.Is(err, gitlab.ErrBranchNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return fmt.Errorf("failed to delete source branch: %w", err)
	}
	return nil
}

// PlatformName returns "GitLab".
func (a *GitLabAdapter) PlatformName() string {
	return "GitLab"
}

// convertMergeRequest converts a GitLab merge request to the platform-agnostic
// format. For closed and merged MRs the source branch existence is probed so
// the controller can suppress reopen/restore actions.
func (a *GitLabAdapter) convertMergeRequest(ctx context.Context, mr *gogitlab.MergeRequest) *PullRequest {
	pr := &PullRequest{
		Number:       int64(mr.IID),
		Title:        mr.Title,
		State:        mapGitLabState(mr.State),
		Draft:        mr.Draft,
		SourceBranch: mr.SourceBranch,
		TargetBranch: mr.TargetBranch,
		SourceSHA:    mr.SHA,
		MergedAt:     mr.MergedAt,
		WebURL:       mr.WebURL,
	}
	if mr.MergeUser != nil {
		pr.MergedBy = mr.MergeUser.Username
	}
	if pr.State != StateOpen {
		exists, err := a.client.BranchExists(ctx, pr.SourceBranch)
		// On probe failure assume the branch is still there; the server
		// stays authoritative when an action is actually submitted.
		pr.SourceBranchDeleted = err == nil && !exists
	}
	return pr
}

// mapGitLabState converts a GitLab MR state string to the platform state.
func mapGitLabState(state string) State {
	switch state {
	case glStateMerged:
		return StateMerged
	case glStateClosed:
		return StateClosed
	case glStateOpened, glStateLocked:
		return StateOpen
	default:
		return StateOpen
	}
}

// evaluateDetailedStatus converts detailed_merge_status into a check status
// and the rule violations blocking the merge. Bypassability of policy rules
// depends on the token holder having maintainer access.
func evaluateDetailedStatus(status string, hasConflicts bool, canBypass bool) (MergeCheckStatus, []RuleViolation) {
	switch status {
	case glStatusMergeable:
		return CheckMergeable, nil

	case glStatusChecking, glStatusUnchecked, glStatusPreparing, glStatusApprovalsSync:
		return CheckUnchecked, nil

	case glStatusConflict, glStatusNeedRebase, glStatusBrokenStatus:
		return CheckConflict, nil

	case glStatusNotApproved:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "approvals-missing",
			Message:    "Required approvals are missing",
			Bypassable: canBypass,
		}}

	case glStatusCIMustPass:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "checks-must-pass",
			Message:    "CI pipeline must succeed before merging",
			Bypassable: canBypass,
		}}

	case glStatusCIRunning:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "checks-running",
			Message:    "CI pipeline is still running",
			Bypassable: canBypass,
		}}

	case glStatusDiscussions:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "discussions-unresolved",
			Message:    "All discussions must be resolved",
			Bypassable: canBypass,
		}}

	case glStatusChangesRequired:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "changes-requested",
			Message:    "A reviewer has requested changes",
			Bypassable: canBypass,
		}}

	case glStatusBlocked:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "blocked",
			Message:    "Blocked by another merge request or policy",
			Bypassable: false,
		}}

	case glStatusExternalChecks:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "external-checks",
			Message:    "External status checks have not passed",
			Bypassable: false,
		}}

	case glStatusDraft:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "draft",
			Message:    "Draft merge requests cannot be merged",
			Bypassable: false,
		}}

	case glStatusJiraMissing:
		return CheckNotMergeable, []RuleViolation{{
			Code:       "issue-link-missing",
			Message:    "A linked issue is required before merging",
			Bypassable: false,
		}}

	default:
		// Unknown statuses appear when GitLab adds new checks; conflicts
		// reported alongside take precedence over a generic violation.
		if hasConflicts {
			return CheckConflict, nil
		}
		return CheckNotMergeable, []RuleViolation{{
			Code:       status,
			Message:    "Merge blocked: " + status,
			Bypassable: false,
		}}
	}
}

// gitlabStrategies derives the allowed strategy set from project settings.
// A forced squash policy narrows the set to squash only.
func gitlabStrategies(settings gitlab.MergeSettings) StrategySet {
	if settings.SquashOption == glSquashAlways {
		return NewStrategySet(StrategySquash)
	}

	set := StrategySet{}
	switch settings.Method {
	case glMethodMerge:
		set = set.With(StrategyMergeCommit)
	case glMethodRebaseMerge, glMethodFastForward:
		set = set.With(StrategyRebase)
	default:
		set = set.With(StrategyMergeCommit)
	}
	if settings.SquashOption != glSquashNever {
		set = set.With(StrategySquash)
	}
	return set
}

// Compile-time interface check.
var _ Provider = (*GitLabAdapter)(nil)
