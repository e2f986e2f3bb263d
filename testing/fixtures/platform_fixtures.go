package fixtures

import (
	"time"

	"github.com/mergegate/mergegate/pkg/platform"
)

// Test constants for platform fixtures.
const (
	defaultPRID     = 42
	defaultWebURL   = "https://example.com/owner/repo/-/merge_requests/42"
	defaultSourceBr = "feature-branch"
	defaultTargetBr = "main"
	defaultTitle    = "Test merge request"
	defaultHeadSHA  = "abc123def456"
)

// OpenPullRequest returns an open platform pull request for testing.
func OpenPullRequest() *platform.PullRequest {
	return &platform.PullRequest{
		Number:       defaultPRID,
		Title:        defaultTitle,
		State:        platform.StateOpen,
		SourceBranch: defaultSourceBr,
		TargetBranch: defaultTargetBr,
		SourceSHA:    defaultHeadSHA,
		WebURL:       defaultWebURL,
	}
}

// DraftPullRequest returns an open draft pull request for testing.
func DraftPullRequest() *platform.PullRequest {
	pr := OpenPullRequest()
	pr.Title = "Draft: " + pr.Title
	pr.Draft = true
	return pr
}

// ClosedPullRequest returns a closed pull request for testing.
func ClosedPullRequest() *platform.PullRequest {
	pr := OpenPullRequest()
	pr.State = platform.StateClosed
	return pr
}

// MergedPullRequest returns a merged pull request for testing.
func MergedPullRequest() *platform.PullRequest {
	pr := OpenPullRequest()
	pr.State = platform.StateMerged
	mergedAt := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	pr.MergedAt = &mergedAt
	pr.MergedBy = "testuser"
	return pr
}

// MergeableDryRun returns a dry-run result where the merge would succeed.
func MergeableDryRun() *platform.DryRunResult {
	return &platform.DryRunResult{
		Mergeable:         true,
		CheckStatus:       platform.CheckMergeable,
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
	}
}

// UncheckedDryRun returns a dry-run result that has not settled yet.
func UncheckedDryRun() *platform.DryRunResult {
	return &platform.DryRunResult{
		CheckStatus:       platform.CheckUnchecked,
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
	}
}

// ConflictDryRun returns a dry-run result blocked by merge conflicts.
func ConflictDryRun() *platform.DryRunResult {
	return &platform.DryRunResult{
		CheckStatus:       platform.CheckConflict,
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
	}
}

// BlockedDryRun returns a dry-run result blocked by the given rule violations.
func BlockedDryRun(violations ...platform.RuleViolation) *platform.DryRunResult {
	return &platform.DryRunResult{
		CheckStatus:       platform.CheckNotMergeable,
		Violations:        violations,
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
	}
}

// BypassableViolation returns a rule violation a privileged user may override.
func BypassableViolation() platform.RuleViolation {
	return platform.RuleViolation{
		Code:       "checks-pending",
		Message:    "Required status checks have not all passed",
		Bypassable: true,
	}
}

// HardViolation returns a rule violation no user may override.
func HardViolation() platform.RuleViolation {
	return platform.RuleViolation{
		Code:       "external-checks",
		Message:    "External status checks have not passed",
		Bypassable: false,
	}
}

// ValidMergeReceipt returns a merge receipt for testing.
func ValidMergeReceipt() *platform.MergeReceipt {
	return &platform.MergeReceipt{
		MergedAt: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		MergedBy: "testuser",
	}
}
