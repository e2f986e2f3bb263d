// Package mergebox implements the merge eligibility and action controller
// for a single pull request.
//
// A Controller binds to one pull request, keeps its merge eligibility fresh
// through periodic server-side dry-run evaluations, derives the set of
// legal actions from the pull request lifecycle state, and executes merges
// and state transitions through a platform.Provider. All derived data lives
// in an explicit State value that changes only through a pure reducer, so
// every rule is testable without a backend.
//
// Typical watch usage:
//
//	ctrl := mergebox.New(provider, mergebox.Options{Logger: log})
//	ctrl.Bind(ctx, pr)
//	ctrl.Start(ctx)
//	for state := range ctrl.Updates() {
//		render(state)
//	}
package mergebox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sgaunet/bullets"
	"golang.org/x/time/rate"

	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/pkg/platform"
)

// Defaults for controller options.
const (
	// DefaultInterval is the periodic evaluation cadence.
	DefaultInterval = 10 * time.Second
	// evaluationRate bounds how often evaluations may start when several
	// triggers coincide.
	evaluationRate = time.Second
	// evaluationBurst is the number of coinciding triggers let through.
	evaluationBurst = 3
	// updatesBuffer is the notification channel capacity. A consumer that
	// falls further behind misses intermediate snapshots only.
	updatesBuffer = 8
)

// Options configures a Controller. The zero value of every field selects a
// usable default.
type Options struct {
	// Logger receives progress output. Nil selects a silent logger.
	Logger *bullets.Logger
	// Interval is the cadence of periodic evaluations while the pull
	// request is open. Non-positive selects DefaultInterval.
	Interval time.Duration
	// Clock supplies the current time for the evaluation burst limiter.
	// Nil selects time.Now; tests inject a fake to make throttling
	// deterministic.
	Clock func() time.Time
	// DeleteSourceBranch asks the server to remove the source branch after
	// a successful merge.
	DeleteSourceBranch bool
}

// Controller owns the state of one pull request's merge box.
type Controller struct {
	provider platform.Provider
	log      *bullets.Logger
	interval time.Duration
	clock    func() time.Time
	limiter  *rate.Limiter

	deleteSourceBranch bool

	mu            sync.Mutex
	state         State
	bound         bool
	alive         bool
	started       bool
	updatesClosed bool
	commitTitle   string
	commitMessage string
	stop          chan struct{}
	updates       chan State
}

// New creates a controller on top of an initialized provider.
func New(provider platform.Provider, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.NoLogger()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		provider:           provider,
		log:                log,
		interval:           interval,
		clock:              clock,
		limiter:            rate.NewLimiter(rate.Every(evaluationRate), evaluationBurst),
		deleteSourceBranch: opts.DeleteSourceBranch,
		state:              State{CheckStatus: platform.CheckUnchecked},
		alive:              true,
		stop:               make(chan struct{}),
		updates:            make(chan State, updatesBuffer),
	}
}

// Bind mounts the controller on a pull request. Binding a pull request with
// a different number resets every derived field; rebinding the same number
// refreshes the stored copy. When the poll loop is already running the
// bind triggers an immediate evaluation.
func (c *Controller) Bind(ctx context.Context, pr *platform.PullRequest) {
	c.mu.Lock()
	c.commitLocked(pullUpdated{pr: *pr})
	if c.alive {
		c.bound = true
	}
	running := c.started && c.alive
	c.mu.Unlock()

	if running && pr.State == platform.StateOpen {
		c.scheduleEvaluation(ctx)
	}
}

// Start launches the poll loop: an immediate evaluation followed by one per
// interval while the pull request stays open. The loop stops when the
// context is canceled, Stop is called, or the pull request reaches the
// terminal merged state. Start is a no-op when already running.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || !c.alive {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.scheduleEvaluation(ctx)
	go c.run(ctx)
}

// Stop halts the poll loop and suppresses every state commit still in
// flight. A stopped controller keeps serving Snapshot but cannot be
// restarted.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}
	c.alive = false
	close(c.stop)
	c.closeUpdatesLocked()
}

// run is the poll loop goroutine.
func (c *Controller) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-c.stop:
			return
		case <-ticker.C:
			state := c.Snapshot()
			if state.PR.State == platform.StateMerged {
				// Terminal: nothing left to evaluate, release consumers.
				c.closeUpdates()
				return
			}
			if state.PR.State != platform.StateOpen {
				continue
			}
			c.scheduleEvaluation(ctx)
		}
	}
}

// scheduleEvaluation starts a background evaluation unless the burst
// limiter rejects it. Overlapping evaluations are tolerated: results
// commit in settle order and the last one wins.
func (c *Controller) scheduleEvaluation(ctx context.Context) {
	if !c.limiter.AllowN(c.clock(), 1) {
		c.log.Debug("Evaluation skipped by burst limiter")
		return
	}
	go func() {
		if err := c.EvaluateNow(ctx); err != nil {
			c.log.Debug(fmt.Sprintf("Background evaluation failed: %v", err))
		}
	}()
}

// EvaluateNow performs one evaluation pass: refresh the pull request copy,
// then ask the server for a merge dry-run. Closed and merged pull requests
// are never evaluated. The result is committed through the reducer unless
// the controller stopped while the requests were in flight; errors are
// also recorded in State.LastError so a watch display can show them.
func (c *Controller) EvaluateNow(ctx context.Context) error {
	c.mu.Lock()
	if !c.bound {
		c.mu.Unlock()
		return errNotBound
	}
	number := c.state.PR.Number
	open := c.state.PR.State == platform.StateOpen
	c.mu.Unlock()
	if !open {
		return nil
	}

	pr, err := c.provider.GetPullRequest(ctx, number)
	if err != nil {
		c.commit(evalFailed{err: err})
		return fmt.Errorf("failed to refresh pull request: %w", err)
	}
	c.commit(pullUpdated{pr: *pr})
	if pr.State != platform.StateOpen {
		// The refresh revealed an external merge or close.
		return nil
	}

	result, err := c.provider.DryRunMerge(ctx, number)
	if err != nil {
		c.commit(evalFailed{err: err})
		return fmt.Errorf("failed to evaluate mergeability: %w", err)
	}
	c.commit(evalSettled{result: *result})
	return nil
}

// Select chooses the merge option the next Confirm will execute. Options
// outside the catalog are rejected; catalog options that are not eligible
// right now are dropped silently, since the next settled evaluation is
// authoritative anyway.
func (c *Controller) Select(kind OptionKind) error {
	if _, ok := OptionByKind(kind); !ok {
		return fmt.Errorf("%w: %q", errUnknownOption, string(kind))
	}
	c.commit(optionSelected{kind: kind})
	return nil
}

// SelectDraft chooses the action for the draft prompt.
func (c *Controller) SelectDraft(kind DraftOptionKind) error {
	if kind != DraftOptionReady && kind != DraftOptionClose {
		return fmt.Errorf("%w: %q", errUnknownOption, string(kind))
	}
	c.commit(draftOptionSelected{kind: kind})
	return nil
}

// SetBypass records the intent to override bypassable rule violations on
// the next merge. Enabling is rejected while a non-bypassable violation
// stands.
func (c *Controller) SetBypass(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enabled && c.state.NotBypassable() {
		return errNotBypassable
	}
	c.commitLocked(bypassSet{enabled: enabled})
	return nil
}

// SetCommitMessage overrides the commit title and message used by merge
// confirmations. Empty values let the server build its defaults.
func (c *Controller) SetCommitMessage(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitTitle = title
	c.commitMessage = message
}

// ShowConfirmation toggles the confirmation step in the rendered state.
func (c *Controller) ShowConfirmation(shown bool) {
	c.commit(confirmationShown{shown: shown})
}

// DismissError clears the evaluation error notification.
func (c *Controller) DismissError() {
	c.commit(errorDismissed{})
}

// Confirm executes the selected option. Merge options require a settled
// evaluation and either a clean result or an explicit bypass of only
// bypassable violations; close is always permitted. On success the pull
// request copy is refreshed into its terminal state and the merge receipt
// returned (nil for close). Failures are returned without retry and leave
// the state unchanged.
func (c *Controller) Confirm(ctx context.Context) (*platform.MergeReceipt, error) {
	c.mu.Lock()
	state := cloneState(c.state)
	bound := c.bound
	commitTitle := c.commitTitle
	commitMessage := c.commitMessage
	c.mu.Unlock()

	if !bound {
		return nil, errNotBound
	}
	if state.PR.State != platform.StateOpen {
		return nil, fmt.Errorf("%w: pull request is %s", errNotOpen, state.PR.State)
	}
	if state.Selected == OptionNone {
		return nil, errNoSelection
	}
	if state.Selected == OptionClose {
		if err := c.Close(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := checkMergePreconditions(state); err != nil {
		return nil, err
	}

	strategy, _ := state.Selected.Strategy()
	receipt, err := c.provider.SubmitMerge(ctx, state.PR.Number, platform.MergeParams{
		Strategy:           strategy,
		CommitTitle:        commitTitle,
		CommitMessage:      commitMessage,
		Bypass:             state.Bypass,
		SHA:                state.PR.SourceSHA,
		DeleteSourceBranch: c.deleteSourceBranch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit merge: %w", err)
	}

	c.commit(confirmationShown{shown: false})
	c.refreshAfterMerge(ctx, state.PR, receipt)
	return receipt, nil
}

// checkMergePreconditions validates a merge confirmation against the last
// settled evaluation.
func checkMergePreconditions(state State) error {
	if state.CheckStatus == platform.CheckUnchecked {
		return errEvaluationPending
	}
	option, ok := OptionByKind(state.Selected)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownOption, string(state.Selected))
	}
	if !option.Eligible(state) {
		return fmt.Errorf("%w: %s", errOptionNotEligible, option.Title)
	}
	if state.NotBypassable() {
		return errNotBypassable
	}
	if state.RuleViolation() && !state.Bypass {
		return errBypassRequired
	}
	return nil
}

// refreshAfterMerge pulls the terminal pull request state. When the
// refresh fails the local copy is advanced from the receipt so the state
// machine still reaches merged.
func (c *Controller) refreshAfterMerge(ctx context.Context, previous platform.PullRequest, receipt *platform.MergeReceipt) {
	pr, err := c.provider.GetPullRequest(ctx, previous.Number)
	if err == nil {
		c.commit(pullUpdated{pr: *pr})
		return
	}
	c.log.Debug(fmt.Sprintf("Post-merge refresh failed: %v", err))
	merged := previous
	merged.State = platform.StateMerged
	if receipt != nil {
		mergedAt := receipt.MergedAt
		merged.MergedAt = &mergedAt
		merged.MergedBy = receipt.MergedBy
	}
	c.commit(pullUpdated{pr: merged})
}

// MarkDraft converts an open pull request into a draft. Already drafted
// pull requests are left alone.
func (c *Controller) MarkDraft(ctx context.Context) error {
	state, err := c.boundState()
	if err != nil {
		return err
	}
	if state.PR.State != platform.StateOpen {
		return fmt.Errorf("%w: cannot mark a %s pull request as draft", errNotOpen, state.PR.State)
	}
	if state.PR.Draft {
		return nil
	}
	pr, err := c.provider.UpdateState(ctx, state.PR.Number, platform.StateParams{
		State: platform.StateOpen,
		Draft: true,
	})
	if err != nil {
		return fmt.Errorf("failed to mark as draft: %w", err)
	}
	c.commitPull(ctx, *pr)
	return nil
}

// ReadyForReview removes the draft flag from an open pull request.
func (c *Controller) ReadyForReview(ctx context.Context) error {
	state, err := c.boundState()
	if err != nil {
		return err
	}
	if state.PR.State != platform.StateOpen {
		return fmt.Errorf("%w: cannot mark a %s pull request ready", errNotOpen, state.PR.State)
	}
	if !state.PR.Draft {
		return nil
	}
	pr, err := c.provider.UpdateState(ctx, state.PR.Number, platform.StateParams{
		State: platform.StateOpen,
		Draft: false,
	})
	if err != nil {
		return fmt.Errorf("failed to mark ready for review: %w", err)
	}
	c.commitPull(ctx, *pr)
	return nil
}

// Close closes the pull request. Closing an already closed pull request is
// a no-op; closing a merged one is an error.
func (c *Controller) Close(ctx context.Context) error {
	state, err := c.boundState()
	if err != nil {
		return err
	}
	if state.PR.State == platform.StateMerged {
		return fmt.Errorf("cannot close: %w", platform.ErrAlreadyMerged)
	}
	if state.PR.State == platform.StateClosed {
		return nil
	}
	pr, err := c.provider.UpdateState(ctx, state.PR.Number, platform.StateParams{
		State: platform.StateClosed,
		Draft: state.PR.Draft,
	})
	if err != nil {
		return fmt.Errorf("failed to close pull request: %w", err)
	}
	c.commitPull(ctx, *pr)
	return nil
}

// Reopen reopens a closed pull request. The transition is suppressed
// client-side when the source branch was deleted; the server would reject
// it anyway.
func (c *Controller) Reopen(ctx context.Context) error {
	state, err := c.boundState()
	if err != nil {
		return err
	}
	if state.PR.State == platform.StateMerged {
		return fmt.Errorf("cannot reopen: %w", platform.ErrAlreadyMerged)
	}
	if state.PR.State != platform.StateClosed {
		return nil
	}
	if state.PR.SourceBranchDeleted {
		return fmt.Errorf("%w: cannot reopen %s", errSourceBranchGone, state.PR.SourceBranch)
	}
	pr, err := c.provider.UpdateState(ctx, state.PR.Number, platform.StateParams{
		State: platform.StateOpen,
		Draft: state.PR.Draft,
	})
	if err != nil {
		return fmt.Errorf("failed to reopen pull request: %w", err)
	}
	c.commitPull(ctx, *pr)
	return nil
}

// Snapshot returns a copy of the current state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// Updates returns the notification stream. Every committed change sends
// one snapshot; sends never block, so a slow consumer only misses
// intermediate states. The channel closes when the pull request reaches
// the terminal merged state or the controller stops.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// boundState returns a state snapshot after checking a pull request is
// bound.
func (c *Controller) boundState() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return State{}, errNotBound
	}
	return cloneState(c.state), nil
}

// commitPull folds a fresh pull request copy into the state and schedules
// a re-evaluation when the source head moved while the pull request stayed
// open.
func (c *Controller) commitPull(ctx context.Context, pr platform.PullRequest) {
	c.mu.Lock()
	sameIdentity := pr.Number == c.state.PR.Number
	headMoved := pr.SourceSHA != c.state.PR.SourceSHA
	c.commitLocked(pullUpdated{pr: pr})
	c.mu.Unlock()

	if sameIdentity && headMoved && pr.State == platform.StateOpen {
		c.scheduleEvaluation(ctx)
	}
}

// commit applies an event through the reducer. Commits after Stop are
// dropped so a late evaluation cannot resurrect state.
func (c *Controller) commit(ev event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitLocked(ev)
}

// commitLocked applies an event and notifies consumers. Callers hold mu.
func (c *Controller) commitLocked(ev event) {
	if !c.alive {
		return
	}
	c.state = reduce(c.state, ev)
	c.notifyLocked()
	if c.state.PR.State == platform.StateMerged {
		c.closeUpdatesLocked()
	}
}

// notifyLocked sends the current state without blocking. Callers hold mu.
func (c *Controller) notifyLocked() {
	if c.updatesClosed {
		return
	}
	select {
	case c.updates <- cloneState(c.state):
	default:
	}
}

// closeUpdates releases Updates consumers once the terminal state is
// reached.
func (c *Controller) closeUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeUpdatesLocked()
}

func (c *Controller) closeUpdatesLocked() {
	if c.updatesClosed {
		return
	}
	c.updatesClosed = true
	close(c.updates)
}
