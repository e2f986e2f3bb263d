// Package watch renders live merge box state on the terminal.
//
// A Renderer consumes the state snapshots of a mergebox controller and keeps
// a compact live display using the bullets library: a headline bullet for
// the merge check, one bullet per rule violation, and a closing summary once
// the pull request reaches a terminal state.
package watch

import (
	"fmt"
	"os"
	"time"

	"github.com/sgaunet/bullets"

	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/internal/timeutil"
	"github.com/mergegate/mergegate/pkg/mergebox"
	"github.com/mergegate/mergegate/pkg/platform"
)

// Renderer drives the live watch display. It is not safe for concurrent
// use; feed it from a single goroutine draining Controller.Updates.
type Renderer struct {
	log       *bullets.Logger
	updatable *bullets.UpdatableLogger
	tracker   *violationTracker

	headline   *bullets.BulletHandle
	lastStatus platform.MergeCheckStatus
	lastText   string
	lastError  string
}

// NewRenderer creates a renderer writing to stdout. Debug output goes to the
// given logger; nil selects a silent one.
func NewRenderer(log *bullets.Logger) *Renderer {
	if log == nil {
		log = logger.NoLogger()
	}
	return &Renderer{
		log:       log,
		updatable: bullets.NewUpdatable(os.Stdout),
		tracker:   newViolationTracker(),
	}
}

// Start opens the display with the pull request header and indents the
// lines that follow under it.
func (r *Renderer) Start(pr platform.PullRequest) {
	r.updatable.Info(fmt.Sprintf("Watching #%d: %s (%s into %s)",
		pr.Number, pr.Title, pr.SourceBranch, pr.TargetBranch))
	r.updatable.IncreasePadding()
}

// Render folds one state snapshot into the display.
func (r *Renderer) Render(state mergebox.State) {
	r.renderHeadline(state)

	transitions := r.tracker.update(state.Violations, r.updatable)
	for _, transition := range transitions {
		r.log.Debug(transition)
	}

	r.renderError(state)
}

// Summary prints a one-shot evaluation report: the pull request header, the
// merge check outcome, rule violations, conflicting paths, and the allowed
// strategies. Terminal states print their closing line instead.
func (r *Renderer) Summary(state mergebox.State) {
	pr := state.PR
	r.updatable.Info(fmt.Sprintf("#%d: %s (%s into %s)", pr.Number, pr.Title, pr.SourceBranch, pr.TargetBranch))
	r.updatable.IncreasePadding()
	defer r.updatable.DecreasePadding()

	switch pr.State {
	case platform.StateMerged:
		r.updatable.Success(mergedSummary(pr))
		return
	case platform.StateClosed:
		text := "Closed without merging"
		handle := r.updatable.InfoHandle(text)
		handle.Warning(text)
		return
	}

	if pr.Draft {
		r.updatable.Info("Draft pull request")
	}

	r.renderHeadline(state)
	if state.CheckStatus != platform.CheckMergeable && state.Allowed.Len() > 0 {
		r.updatable.Info("Allowed strategies: " + state.Allowed.String())
	}
	for _, path := range state.ConflictingFiles {
		r.updatable.Error("Conflict: " + path)
	}

	transitions := r.tracker.update(state.Violations, r.updatable)
	for _, transition := range transitions {
		r.log.Debug(transition)
	}

	r.renderError(state)
}

// Finish closes the display with the terminal outcome.
func (r *Renderer) Finish(state mergebox.State) {
	r.updatable.DecreasePadding()

	switch state.PR.State {
	case platform.StateMerged:
		r.updatable.Success(mergedSummary(state.PR))
	case platform.StateClosed:
		text := fmt.Sprintf("#%d closed without merging", state.PR.Number)
		handle := r.updatable.InfoHandle(text)
		handle.Warning(text)
	default:
		r.updatable.Info(fmt.Sprintf("Stopped watching #%d", state.PR.Number))
	}
}

// Timeout reports that the watch gave up before a terminal state.
func (r *Renderer) Timeout(elapsed time.Duration) {
	r.updatable.DecreasePadding()
	r.updatable.Error("Timeout after " + timeutil.FormatDuration(elapsed))
}

// BeginMerge shows a merge submission spinner. The caller finalizes it with
// Success or Error.
func (r *Renderer) BeginMerge(strategy platform.Strategy) *bullets.Spinner {
	return r.updatable.SpinnerCircle(fmt.Sprintf("Submitting %s merge...", strategy))
}

// renderHeadline keeps the merge check line current. The first snapshot
// creates the bullet; later ones rewrite it only when the text changes.
func (r *Renderer) renderHeadline(state mergebox.State) {
	text := formatCheckStatus(state)
	if r.headline != nil && state.CheckStatus == r.lastStatus && text == r.lastText {
		return
	}

	if r.headline == nil {
		r.headline = r.updatable.InfoHandle(text)
	}

	switch state.CheckStatus {
	case platform.CheckMergeable:
		r.headline.Success(text)
	case platform.CheckConflict, platform.CheckNotMergeable:
		r.headline.Error(text)
	default:
		r.headline.Update(bullets.InfoLevel, text)
	}

	r.lastStatus = state.CheckStatus
	r.lastText = text
}

// renderError surfaces evaluation failures without stopping the watch.
// Repeated identical failures print once.
func (r *Renderer) renderError(state mergebox.State) {
	if state.LastError == r.lastError {
		return
	}
	r.lastError = state.LastError

	if state.LastError != "" {
		r.updatable.Error("Evaluation failed: " + state.LastError)
	}
}

// formatCheckStatus renders the headline text for the current evaluation
// state. Icons are added by the bullets library methods.
func formatCheckStatus(state mergebox.State) string {
	switch state.CheckStatus {
	case platform.CheckMergeable:
		if state.Allowed.Len() == 0 {
			return "Mergeable, but no merge strategy is allowed"
		}
		return fmt.Sprintf("Mergeable (%s)", state.Allowed.String())
	case platform.CheckConflict:
		if len(state.ConflictingFiles) > 0 {
			return fmt.Sprintf("Merge conflict in %d file(s)", len(state.ConflictingFiles))
		}
		return "Merge conflict with the target branch"
	case platform.CheckNotMergeable:
		return fmt.Sprintf("Not mergeable: %d rule violation(s)", len(state.Violations))
	default:
		return "Checking mergeability..."
	}
}

// mergedSummary renders the closing line for a merged pull request.
func mergedSummary(pr platform.PullRequest) string {
	summary := fmt.Sprintf("#%d merged", pr.Number)
	if pr.MergedBy != "" {
		summary += " by " + pr.MergedBy
	}
	if pr.MergedAt != nil {
		summary += " at " + pr.MergedAt.Format(time.RFC3339)
	}
	return summary
}
