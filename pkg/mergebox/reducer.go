package mergebox

import "github.com/mergegate/mergegate/pkg/platform"

// event is one input to the reducer. The controller's public methods
// translate calls into events so that every state change flows through
// reduce.
type event interface {
	isEvent()
}

// evalSettled carries the result of a completed dry-run evaluation.
type evalSettled struct {
	result platform.DryRunResult
}

// evalFailed carries the error of an evaluation that did not settle.
type evalFailed struct {
	err error
}

// pullUpdated carries a freshly fetched pull request copy.
type pullUpdated struct {
	pr platform.PullRequest
}

// optionSelected records the user's merge option choice.
type optionSelected struct {
	kind OptionKind
}

// draftOptionSelected records the user's draft action choice.
type draftOptionSelected struct {
	kind DraftOptionKind
}

// bypassSet records the user's bypass intent.
type bypassSet struct {
	enabled bool
}

// confirmationShown toggles the confirmation step.
type confirmationShown struct {
	shown bool
}

// errorDismissed clears the last evaluation error notification.
type errorDismissed struct{}

func (evalSettled) isEvent()         {}
func (evalFailed) isEvent()          {}
func (pullUpdated) isEvent()         {}
func (optionSelected) isEvent()      {}
func (draftOptionSelected) isEvent() {}
func (bypassSet) isEvent()           {}
func (confirmationShown) isEvent()   {}
func (errorDismissed) isEvent()      {}

// reduce computes the next state from the current one and a single event.
// It is a pure function: no I/O, no clock, no mutation of the input.
func reduce(s State, ev event) State {
	switch ev := ev.(type) {
	case evalSettled:
		return reduceEvalSettled(s, ev.result)
	case evalFailed:
		s.LastError = ev.err.Error()
		return s
	case pullUpdated:
		return reducePullUpdated(s, ev.pr)
	case optionSelected:
		return reduceOptionSelected(s, ev.kind)
	case draftOptionSelected:
		s.SelectedDraft = ev.kind
		return s
	case bypassSet:
		// Bypass cannot be toggled while a non-bypassable violation stands.
		if s.NotBypassable() {
			return s
		}
		s.Bypass = ev.enabled
		return s
	case confirmationShown:
		s.ShowConfirmation = ev.shown
		return s
	case errorDismissed:
		s.LastError = ""
		return s
	default:
		return s
	}
}

// reduceEvalSettled folds a settled evaluation into the state. Evaluations
// may overlap; whichever settles last wins wholesale.
func reduceEvalSettled(s State, result platform.DryRunResult) State {
	sameAllowed := s.Allowed.Equal(result.AllowedStrategies)
	s.CheckStatus = result.CheckStatus
	s.Allowed = result.AllowedStrategies
	s.ConflictingFiles = result.ConflictingFiles
	s.Violations = result.Violations
	s.EvalSeq++
	// An unchanged allowed set never moves the selection.
	if sameAllowed {
		return s
	}
	s.Selected = reconcileSelection(s.Selected, result.AllowedStrategies)
	return s
}

// reconcileSelection keeps the selection when it is still allowed, falls
// back to the first allowed strategy otherwise, and clears it when the
// server allows nothing. A close selection survives any allowed set.
func reconcileSelection(selected OptionKind, allowed platform.StrategySet) OptionKind {
	if selected == OptionClose {
		return selected
	}
	if strategy, ok := selected.Strategy(); ok && allowed.Contains(strategy) {
		return selected
	}
	if first, ok := allowed.First(); ok {
		return OptionForStrategy(first)
	}
	return OptionNone
}

// reducePullUpdated folds a fresh pull request copy into the state.
func reducePullUpdated(s State, pr platform.PullRequest) State {
	// A different number is a new identity: every derived field describes
	// the old pull request.
	if pr.Number != s.PR.Number {
		return newState(pr)
	}
	previous := s.PR.State
	s.PR = pr
	if previous != pr.State && (pr.State == platform.StateMerged || pr.State == platform.StateClosed) {
		s.Bypass = false
		s.ShowConfirmation = false
	}
	return s
}

// reduceOptionSelected applies a merge option choice. Options outside the
// currently eligible set are dropped silently; the next settled evaluation
// is authoritative anyway.
func reduceOptionSelected(s State, kind OptionKind) State {
	option, ok := OptionByKind(kind)
	if !ok || !option.Eligible(s) {
		return s
	}
	s.Selected = kind
	return s
}
