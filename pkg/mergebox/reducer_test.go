package mergebox

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mergegate/mergegate/pkg/platform"
)

// stateDiff compares states while tolerating the unexported strategy set.
var stateDiff = cmp.Options{
	cmp.Comparer(func(a, b platform.StrategySet) bool { return a.Equal(b) }),
}

func openPull(number int64) platform.PullRequest {
	return platform.PullRequest{
		Number:       number,
		Title:        "Add feature",
		State:        platform.StateOpen,
		SourceBranch: "feature",
		TargetBranch: "main",
		SourceSHA:    "aaa111",
	}
}

func settledResult(status platform.MergeCheckStatus, strategies ...platform.Strategy) platform.DryRunResult {
	return platform.DryRunResult{
		Mergeable:         status == platform.CheckMergeable,
		CheckStatus:       status,
		AllowedStrategies: platform.NewStrategySet(strategies...),
	}
}

// TestReduceEvalSettled tests selection reconciliation on settled evaluations.
func TestReduceEvalSettled(t *testing.T) {
	tests := []struct {
		name         string
		before       State
		result       platform.DryRunResult
		wantSelected OptionKind
	}{
		{
			name:         "first settle selects first allowed",
			before:       newState(openPull(7)),
			result:       settledResult(platform.CheckMergeable, platform.StrategyMergeCommit, platform.StrategySquash),
			wantSelected: OptionMergeCommit,
		},
		{
			name: "selection kept while still allowed",
			before: State{
				PR:       openPull(7),
				Allowed:  platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
				Selected: OptionSquash,
			},
			result:       settledResult(platform.CheckMergeable, platform.StrategySquash, platform.StrategyRebase),
			wantSelected: OptionSquash,
		},
		{
			name: "dropped selection falls back to first allowed",
			before: State{
				PR:       openPull(7),
				Allowed:  platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
				Selected: OptionMergeCommit,
			},
			result:       settledResult(platform.CheckMergeable, platform.StrategySquash),
			wantSelected: OptionSquash,
		},
		{
			name: "empty allowed set clears selection",
			before: State{
				PR:       openPull(7),
				Allowed:  platform.NewStrategySet(platform.StrategyMergeCommit),
				Selected: OptionMergeCommit,
			},
			result:       settledResult(platform.CheckNotMergeable),
			wantSelected: OptionNone,
		},
		{
			name: "unchanged allowed set never moves the selection",
			before: State{
				PR:      openPull(7),
				Allowed: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
			},
			result:       settledResult(platform.CheckMergeable, platform.StrategyMergeCommit, platform.StrategySquash),
			wantSelected: OptionNone,
		},
		{
			name: "close selection survives any allowed set",
			before: State{
				PR:       openPull(7),
				Allowed:  platform.NewStrategySet(platform.StrategyMergeCommit),
				Selected: OptionClose,
			},
			result:       settledResult(platform.CheckNotMergeable),
			wantSelected: OptionClose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduce(tt.before, evalSettled{result: tt.result})
			if got.Selected != tt.wantSelected {
				t.Errorf("Selected = %q, want %q", got.Selected, tt.wantSelected)
			}
			if got.CheckStatus != tt.result.CheckStatus {
				t.Errorf("CheckStatus = %q, want %q", got.CheckStatus, tt.result.CheckStatus)
			}
			if !got.Allowed.Equal(tt.result.AllowedStrategies) {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.result.AllowedStrategies)
			}
			if got.EvalSeq != tt.before.EvalSeq+1 {
				t.Errorf("EvalSeq = %d, want %d", got.EvalSeq, tt.before.EvalSeq+1)
			}
		})
	}
}

// TestReduceEvalSettledOverwrites tests that each settle replaces the whole
// evaluation outcome, so the last one to arrive wins.
func TestReduceEvalSettledOverwrites(t *testing.T) {
	first := platform.DryRunResult{
		CheckStatus:       platform.CheckConflict,
		ConflictingFiles:  []string{"main.go"},
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit),
	}
	second := platform.DryRunResult{
		Mergeable:         true,
		CheckStatus:       platform.CheckMergeable,
		AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit),
	}

	state := newState(openPull(7))
	state = reduce(state, evalSettled{result: first})
	state = reduce(state, evalSettled{result: second})

	if state.CheckStatus != platform.CheckMergeable {
		t.Errorf("CheckStatus = %q, want %q", state.CheckStatus, platform.CheckMergeable)
	}
	if len(state.ConflictingFiles) != 0 {
		t.Errorf("ConflictingFiles = %v, want none", state.ConflictingFiles)
	}
	if state.EvalSeq != 2 {
		t.Errorf("EvalSeq = %d, want 2", state.EvalSeq)
	}
}

// TestReduceEvalFailed tests that a failed evaluation only sets the
// notification text.
func TestReduceEvalFailed(t *testing.T) {
	before := reduce(newState(openPull(7)), evalSettled{
		result: settledResult(platform.CheckMergeable, platform.StrategyMergeCommit),
	})

	got := reduce(before, evalFailed{err: errors.New("gateway timeout")})

	if got.LastError != "gateway timeout" {
		t.Errorf("LastError = %q, want %q", got.LastError, "gateway timeout")
	}
	got.LastError = before.LastError
	if diff := cmp.Diff(before, got, stateDiff); diff != "" {
		t.Errorf("evalFailed changed more than LastError (-want +got):\n%s", diff)
	}
}

// TestReducePullUpdated tests identity resets and terminal transitions.
func TestReducePullUpdated(t *testing.T) {
	evaluated := reduce(newState(openPull(7)), evalSettled{
		result: settledResult(platform.CheckMergeable, platform.StrategyMergeCommit),
	})
	evaluated = reduce(evaluated, bypassSet{enabled: true})
	evaluated = reduce(evaluated, confirmationShown{shown: true})

	t.Run("same number refreshes the copy", func(t *testing.T) {
		pr := openPull(7)
		pr.SourceSHA = "bbb222"
		got := reduce(evaluated, pullUpdated{pr: pr})
		if got.PR.SourceSHA != "bbb222" {
			t.Errorf("SourceSHA = %q, want %q", got.PR.SourceSHA, "bbb222")
		}
		if got.CheckStatus != platform.CheckMergeable || got.EvalSeq != 1 {
			t.Error("refresh must keep the evaluation outcome")
		}
		if !got.Bypass || !got.ShowConfirmation {
			t.Error("refresh of an open pull request must keep bypass and confirmation")
		}
	})

	t.Run("different number resets everything", func(t *testing.T) {
		got := reduce(evaluated, pullUpdated{pr: openPull(8)})
		if diff := cmp.Diff(newState(openPull(8)), got, stateDiff); diff != "" {
			t.Errorf("identity change must reset state (-want +got):\n%s", diff)
		}
	})

	t.Run("transition to merged clears bypass and confirmation", func(t *testing.T) {
		pr := openPull(7)
		pr.State = platform.StateMerged
		got := reduce(evaluated, pullUpdated{pr: pr})
		if got.Bypass || got.ShowConfirmation {
			t.Error("merged transition must clear bypass and confirmation")
		}
		if got.EvalSeq != 1 {
			t.Error("merged transition must keep the evaluation counter")
		}
	})

	t.Run("transition to closed clears bypass and confirmation", func(t *testing.T) {
		pr := openPull(7)
		pr.State = platform.StateClosed
		got := reduce(evaluated, pullUpdated{pr: pr})
		if got.Bypass || got.ShowConfirmation {
			t.Error("closed transition must clear bypass and confirmation")
		}
	})
}

// TestReduceOptionSelected tests eligibility gating of selections.
func TestReduceOptionSelected(t *testing.T) {
	settled := reduce(newState(openPull(7)), evalSettled{
		result: settledResult(platform.CheckMergeable, platform.StrategyMergeCommit, platform.StrategySquash),
	})

	tests := []struct {
		name         string
		state        State
		kind         OptionKind
		wantSelected OptionKind
	}{
		{
			name:         "allowed option applied",
			state:        settled,
			kind:         OptionSquash,
			wantSelected: OptionSquash,
		},
		{
			name:         "option outside allowed set dropped",
			state:        settled,
			kind:         OptionRebase,
			wantSelected: OptionMergeCommit,
		},
		{
			name:         "close always applies",
			state:        settled,
			kind:         OptionClose,
			wantSelected: OptionClose,
		},
		{
			name: "conflict drops merge options",
			state: reduce(settled, evalSettled{
				result: platform.DryRunResult{
					CheckStatus:       platform.CheckConflict,
					ConflictingFiles:  []string{"main.go"},
					AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit, platform.StrategySquash),
				},
			}),
			kind:         OptionSquash,
			wantSelected: OptionMergeCommit,
		},
		{
			name:         "unknown kind dropped",
			state:        settled,
			kind:         OptionKind("bogus"),
			wantSelected: OptionMergeCommit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduce(tt.state, optionSelected{kind: tt.kind})
			if got.Selected != tt.wantSelected {
				t.Errorf("Selected = %q, want %q", got.Selected, tt.wantSelected)
			}
		})
	}
}

// TestReduceBypassSet tests that bypass toggles are ignored while a
// non-bypassable violation stands.
func TestReduceBypassSet(t *testing.T) {
	bypassable := reduce(newState(openPull(7)), evalSettled{
		result: platform.DryRunResult{
			CheckStatus: platform.CheckNotMergeable,
			Violations: []platform.RuleViolation{
				{Code: "checks-pending", Bypassable: true},
			},
			AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit),
		},
	})

	got := reduce(bypassable, bypassSet{enabled: true})
	if !got.Bypass {
		t.Error("bypass must apply when every violation is bypassable")
	}

	hard := reduce(got, evalSettled{
		result: platform.DryRunResult{
			CheckStatus: platform.CheckNotMergeable,
			Violations: []platform.RuleViolation{
				{Code: "external-checks", Bypassable: false},
			},
			AllowedStrategies: platform.NewStrategySet(platform.StrategyMergeCommit),
		},
	})
	if toggled := reduce(hard, bypassSet{enabled: false}); toggled.Bypass != hard.Bypass {
		t.Error("bypass toggle must be a no-op while a non-bypassable violation stands")
	}
	if toggled := reduce(newState(openPull(7)), bypassSet{enabled: false}); toggled.Bypass {
		t.Error("clearing bypass must keep it cleared")
	}
}

// TestReduceNotifications tests the small notification events.
func TestReduceNotifications(t *testing.T) {
	state := newState(openPull(7))

	state = reduce(state, confirmationShown{shown: true})
	if !state.ShowConfirmation {
		t.Error("confirmationShown(true) must set ShowConfirmation")
	}
	state = reduce(state, confirmationShown{shown: false})
	if state.ShowConfirmation {
		t.Error("confirmationShown(false) must clear ShowConfirmation")
	}

	state = reduce(state, evalFailed{err: errors.New("boom")})
	state = reduce(state, errorDismissed{})
	if state.LastError != "" {
		t.Errorf("LastError = %q, want empty after dismissal", state.LastError)
	}

	state = reduce(state, draftOptionSelected{kind: DraftOptionReady})
	if state.SelectedDraft != DraftOptionReady {
		t.Errorf("SelectedDraft = %q, want %q", state.SelectedDraft, DraftOptionReady)
	}
}
