package mergebox

import "github.com/mergegate/mergegate/pkg/platform"

// MergeOption is one entry of the merge option catalog.
type MergeOption struct {
	Kind OptionKind
	// Strategy is the server-side strategy behind the option; empty for
	// OptionClose.
	Strategy    platform.Strategy
	Title       string
	Description string
}

// mergeOptionCatalog lists the selectable options in render order.
var mergeOptionCatalog = []MergeOption{
	{
		Kind:        OptionMergeCommit,
		Strategy:    platform.StrategyMergeCommit,
		Title:       "Merge",
		Description: "All commits from the source branch are added to the target branch via a merge commit",
	},
	{
		Kind:        OptionSquash,
		Strategy:    platform.StrategySquash,
		Title:       "Squash and merge",
		Description: "The commits from the source branch are combined into one commit on the target branch",
	},
	{
		Kind:        OptionRebase,
		Strategy:    platform.StrategyRebase,
		Title:       "Rebase and merge",
		Description: "The commits from the source branch are rebased onto the target branch without a merge commit",
	},
	{
		Kind:        OptionClose,
		Title:       "Close",
		Description: "Close the pull request without merging it",
	},
}

// MergeOptions returns the catalog in render order.
func MergeOptions() []MergeOption {
	out := make([]MergeOption, len(mergeOptionCatalog))
	copy(out, mergeOptionCatalog)
	return out
}

// OptionByKind returns the catalog entry for the kind.
func OptionByKind(kind OptionKind) (MergeOption, bool) {
	for _, option := range mergeOptionCatalog {
		if option.Kind == kind {
			return option, true
		}
	}
	return MergeOption{}, false
}

// Eligible reports whether the option can be confirmed under the given
// state. A conflicting merge check disables every option except close.
func (o MergeOption) Eligible(s State) bool {
	if o.Kind == OptionClose {
		return true
	}
	if s.CheckStatus == platform.CheckConflict {
		return false
	}
	return s.Allowed.Contains(o.Strategy)
}

// ActionKind identifies an operation legal in the pull request's current
// lifecycle state.
type ActionKind string

// Action kinds.
const (
	ActionMergeOption    ActionKind = "merge-option"
	ActionMarkDraft      ActionKind = "mark-draft"
	ActionReadyForReview ActionKind = "ready-for-review"
	ActionClose          ActionKind = "close"
	ActionReopen         ActionKind = "reopen"
	ActionRestoreBranch  ActionKind = "restore-branch"
	ActionDeleteBranch   ActionKind = "delete-branch"
)

// Action is one entry of the action set derived from the current state.
type Action struct {
	Kind ActionKind
	// Option names the catalog entry for merge and close actions so a
	// prompt choice can feed Controller.Select directly.
	Option OptionKind
	Title  string
	// Enabled reports eligibility; disabled actions render but cannot be
	// confirmed.
	Enabled bool
}

// ActionsFor derives the set of legal operations from the current state.
// Drafts offer review readiness, open pull requests offer the merge
// catalog, closed ones offer reopen while the source branch still exists,
// and merged ones only offer branch cleanup.
func ActionsFor(s State) []Action {
	if s.PR.Number == 0 {
		return nil
	}
	switch {
	case s.PR.State == platform.StateMerged:
		if s.PR.SourceBranchDeleted {
			return []Action{{
				Kind:    ActionRestoreBranch,
				Title:   "Restore source branch",
				Enabled: s.PR.SourceSHA != "",
			}}
		}
		return []Action{{Kind: ActionDeleteBranch, Title: "Delete source branch", Enabled: true}}
	case s.PR.State == platform.StateClosed:
		if s.PR.SourceBranchDeleted {
			return nil
		}
		return []Action{{Kind: ActionReopen, Title: "Reopen", Enabled: true}}
	case s.PR.Draft:
		return []Action{
			{Kind: ActionReadyForReview, Title: "Ready for review", Enabled: true},
			{Kind: ActionClose, Option: OptionClose, Title: "Close", Enabled: true},
		}
	default:
		actions := make([]Action, 0, len(mergeOptionCatalog)+1)
		for _, option := range mergeOptionCatalog {
			kind := ActionMergeOption
			if option.Kind == OptionClose {
				kind = ActionClose
			}
			actions = append(actions, Action{
				Kind:    kind,
				Option:  option.Kind,
				Title:   option.Title,
				Enabled: option.Eligible(s),
			})
		}
		return append(actions, Action{Kind: ActionMarkDraft, Title: "Mark as draft", Enabled: true})
	}
}
