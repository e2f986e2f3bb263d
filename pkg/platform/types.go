// Package platform provides a unified abstraction layer for GitLab and GitHub
// pull request operations.
//
// The [Provider] interface defines a common API for the merge lifecycle of an
// existing pull/merge request: dry-run eligibility checks, merge submission,
// and state transitions. This allows the controller and the CLI to stay
// platform-agnostic.
//
// Use [NewProvider] to create the appropriate adapter based on the detected
// platform:
//
//	provider, err := platform.NewProvider(git.PlatformGitHub, cfg, logger)
//	provider.Initialize(remoteURL)
//	pr, _ := provider.FindByBranch(ctx, "feature", "main")
//	result, _ := provider.DryRunMerge(ctx, pr.Number)
package platform

import (
	"fmt"
	"strings"
	"time"
)

// State represents the lifecycle state of a pull request.
type State string

// State values. Merged is terminal: no transition leads out of it.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// MergeCheckStatus is the outcome of the most recent server-side dry-run.
type MergeCheckStatus string

// MergeCheckStatus values.
const (
	// CheckUnchecked means no dry-run result is available yet (the server may
	// still be computing mergeability).
	CheckUnchecked MergeCheckStatus = "unchecked"
	// CheckMergeable means the source can be merged into the target cleanly.
	CheckMergeable MergeCheckStatus = "mergeable"
	// CheckConflict means the merge would produce conflicts.
	CheckConflict MergeCheckStatus = "conflict"
	// CheckNotMergeable means the merge is blocked for a non-conflict reason,
	// detailed by the accompanying rule violations.
	CheckNotMergeable MergeCheckStatus = "not-mergeable"
)

// Strategy identifies a server-side merge strategy.
type Strategy string

// Strategy values. This is a closed set: backend strings outside of it are
// rejected at the boundary by [ParseStrategy].
const (
	StrategyMergeCommit Strategy = "merge"
	StrategySquash      Strategy = "squash"
	StrategyRebase      Strategy = "rebase"
)

// ParseStrategy converts a backend or flag string into a Strategy.
// Returns ErrUnknownStrategy for anything outside the closed set.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyMergeCommit:
		return StrategyMergeCommit, nil
	case StrategySquash:
		return StrategySquash, nil
	case StrategyRebase:
		return StrategyRebase, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// StrategySet is an ordered, duplicate-free collection of allowed strategies.
// Order is preserved so that "first allowed" fallback selection stays
// deterministic.
type StrategySet struct {
	strategies []Strategy
}

// NewStrategySet builds a set from the given strategies, dropping duplicates
// while preserving first-occurrence order.
func NewStrategySet(strategies ...Strategy) StrategySet {
	set := StrategySet{}
	for _, s := range strategies {
		set = set.With(s)
	}
	return set
}

// ParseStrategySet converts backend strings into a StrategySet, rejecting
// unknown tags.
func ParseStrategySet(raw []string) (StrategySet, error) {
	set := StrategySet{}
	for _, r := range raw {
		s, err := ParseStrategy(r)
		if err != nil {
			return StrategySet{}, err
		}
		set = set.With(s)
	}
	return set, nil
}

// With returns a copy of the set with the strategy appended if not present.
func (ss StrategySet) With(s Strategy) StrategySet {
	if ss.Contains(s) {
		return ss
	}
	out := StrategySet{strategies: make([]Strategy, 0, len(ss.strategies)+1)}
	out.strategies = append(out.strategies, ss.strategies...)
	out.strategies = append(out.strategies, s)
	return out
}

// Contains reports whether the strategy is in the set.
func (ss StrategySet) Contains(s Strategy) bool {
	for _, have := range ss.strategies {
		if have == s {
			return true
		}
	}
	return false
}

// First returns the first strategy in set order, or false for an empty set.
func (ss StrategySet) First() (Strategy, bool) {
	if len(ss.strategies) == 0 {
		return "", false
	}
	return ss.strategies[0], true
}

// Len returns the number of strategies in the set.
func (ss StrategySet) Len() int {
	return len(ss.strategies)
}

// Values returns a copy of the strategies in set order.
func (ss StrategySet) Values() []Strategy {
	out := make([]Strategy, len(ss.strategies))
	copy(out, ss.strategies)
	return out
}

// Equal reports whether both sets hold the same strategies in the same order.
func (ss StrategySet) Equal(other StrategySet) bool {
	if len(ss.strategies) != len(other.strategies) {
		return false
	}
	for i, s := range ss.strategies {
		if other.strategies[i] != s {
			return false
		}
	}
	return true
}

// String returns a comma-separated representation in set order.
func (ss StrategySet) String() string {
	parts := make([]string, len(ss.strategies))
	for i, s := range ss.strategies {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// RuleViolation is a policy breach reported by the server during a dry-run.
type RuleViolation struct {
	// Code is a stable machine identifier, e.g. "approvals-missing".
	Code string
	// Message is the human-readable description.
	Message string
	// Bypassable reports whether the acting user may override this violation
	// when submitting the merge.
	Bypassable bool
}

// AnyNonBypassable reports whether any violation is flagged non-bypassable.
func AnyNonBypassable(violations []RuleViolation) bool {
	for _, v := range violations {
		if !v.Bypassable {
			return true
		}
	}
	return false
}

// PullRequest is the platform-agnostic view of a pull/merge request.
// It is owned by the backend; the controller treats it as read-only input.
type PullRequest struct {
	Number       int64 // GitLab: MR IID; GitHub: PR number
	Title        string
	State        State
	Draft        bool
	SourceBranch string
	TargetBranch string
	SourceSHA    string // current head commit of the source branch
	// SourceBranchDeleted suppresses the reopen action client-side; the
	// server would reject the transition anyway.
	SourceBranchDeleted bool
	MergedAt            *time.Time
	MergedBy            string
	WebURL              string
}

// Identity returns the PR number. A change of identity resets controller
// state.
func (pr *PullRequest) Identity() int64 {
	return pr.Number
}

// DryRunResult is the outcome of a non-mutating server merge check.
type DryRunResult struct {
	Mergeable         bool
	CheckStatus       MergeCheckStatus
	ConflictingFiles  []string
	Violations        []RuleViolation
	AllowedStrategies StrategySet
}

// MergeParams holds parameters for submitting a merge.
type MergeParams struct {
	Strategy      Strategy
	CommitTitle   string
	CommitMessage string
	// Bypass asks the server to override bypassable rule violations.
	Bypass bool
	// SHA is the expected source head; the server rejects the merge with
	// ErrStaleHead when the branch moved since the last evaluation.
	SHA string
	// DeleteSourceBranch removes the source branch after a successful merge.
	DeleteSourceBranch bool
}

// MergeReceipt reports a successful merge submission.
type MergeReceipt struct {
	MergedAt time.Time
	MergedBy string
}

// StateParams holds parameters for a pull request state transition.
type StateParams struct {
	State State
	Draft bool
}
