package mergebox

import (
	"github.com/mergegate/mergegate/pkg/platform"
)

// OptionKind identifies one entry of the merge option catalog.
type OptionKind string

// Option kinds. The first three map onto server-side merge strategies;
// OptionClose closes the pull request without merging.
const (
	OptionNone        OptionKind = ""
	OptionMergeCommit OptionKind = "merge-commit"
	OptionSquash      OptionKind = "squash"
	OptionRebase      OptionKind = "rebase"
	OptionClose       OptionKind = "close"
)

// Strategy maps the option onto its server-side merge strategy.
// ok is false for OptionClose and OptionNone.
func (k OptionKind) Strategy() (platform.Strategy, bool) {
	switch k {
	case OptionMergeCommit:
		return platform.StrategyMergeCommit, true
	case OptionSquash:
		return platform.StrategySquash, true
	case OptionRebase:
		return platform.StrategyRebase, true
	default:
		return "", false
	}
}

// OptionForStrategy returns the catalog option behind a merge strategy.
func OptionForStrategy(s platform.Strategy) OptionKind {
	switch s {
	case platform.StrategyMergeCommit:
		return OptionMergeCommit
	case platform.StrategySquash:
		return OptionSquash
	case platform.StrategyRebase:
		return OptionRebase
	default:
		return OptionNone
	}
}

// DraftOptionKind identifies the action preselected while the pull request
// is a draft.
type DraftOptionKind string

// Draft option kinds.
const (
	DraftOptionNone  DraftOptionKind = ""
	DraftOptionReady DraftOptionKind = "ready-for-review"
	DraftOptionClose DraftOptionKind = "close"
)

// State is the complete render-ready view of one pull request's merge box.
// It is owned by a Controller and changes only through the reducer;
// consumers receive copies via Snapshot and Updates.
type State struct {
	// PR is the last fetched copy of the pull request.
	PR platform.PullRequest

	// CheckStatus is the outcome of the most recent settled evaluation.
	CheckStatus platform.MergeCheckStatus
	// Allowed holds the merge strategies the server currently permits.
	Allowed platform.StrategySet
	// ConflictingFiles lists the paths that block a clean merge.
	ConflictingFiles []string
	// Violations lists the policy breaches reported by the evaluation.
	Violations []platform.RuleViolation

	// Bypass records the intent to override bypassable violations.
	Bypass bool
	// Selected is the merge option the next Confirm will execute.
	Selected OptionKind
	// SelectedDraft is the action preselected while the pull request is a
	// draft.
	SelectedDraft DraftOptionKind
	// ShowConfirmation reports whether the confirmation step is displayed.
	ShowConfirmation bool

	// LastError is a dismissible notification from a failed evaluation.
	LastError string
	// EvalSeq counts settled evaluations since the bind, for diagnostics.
	EvalSeq uint64
}

// RuleViolation reports whether the last evaluation surfaced any violation.
func (s State) RuleViolation() bool {
	return len(s.Violations) > 0
}

// NotBypassable reports whether any current violation cannot be overridden.
func (s State) NotBypassable() bool {
	return platform.AnyNonBypassable(s.Violations)
}

// newState returns the initial state for a freshly bound pull request.
func newState(pr platform.PullRequest) State {
	return State{PR: pr, CheckStatus: platform.CheckUnchecked}
}

// cloneState returns a copy that shares no mutable data with the original.
func cloneState(s State) State {
	out := s
	if s.ConflictingFiles != nil {
		out.ConflictingFiles = append([]string(nil), s.ConflictingFiles...)
	}
	if s.Violations != nil {
		out.Violations = append([]platform.RuleViolation(nil), s.Violations...)
	}
	if s.PR.MergedAt != nil {
		mergedAt := *s.PR.MergedAt
		out.PR.MergedAt = &mergedAt
	}
	return out
}
