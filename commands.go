package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mergegate/mergegate/internal/watch"
	"github.com/mergegate/mergegate/pkg/mergebox"
	"github.com/mergegate/mergegate/pkg/platform"
)

var (
	errNotMergeable       = errors.New("the pull request is not mergeable")
	errMergeConflict      = errors.New("the merge would conflict with the target branch")
	errBypassFlagRequired = errors.New("rule violations block the merge. Use --bypass to override them")
	errStrategyNotAllowed = errors.New("merge strategy not allowed by the server")
	errNoStrategyAllowed  = errors.New("the server does not allow any merge strategy")
	errWatchTimeout       = errors.New("watch timed out")
)

var (
	watchMerge    bool
	watchStrategy string
	watchTimeout  time.Duration

	mergeStrategy string
	mergeTitle    string
	mergeMessage  string
	mergeBypass   bool
)

var statusCmd = &cobra.Command{
	Use:   "status [number]",
	Short: "Evaluate mergeability once and print the result",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runStatus(cmd.Context(), args))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [number]",
	Short: "Poll mergeability until the pull request merges, closes, or times out",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runWatch(cmd.Context(), args))
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [number]",
	Short: "Merge the pull request",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runMerge(cmd.Context(), args))
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [number]",
	Short: "Close the pull request without merging",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runClose(cmd.Context(), args))
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen [number]",
	Short: "Reopen a closed pull request",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runReopen(cmd.Context(), args))
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft [number]",
	Short: "Mark the pull request as a draft",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runDraft(cmd.Context(), args))
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready [number]",
	Short: "Mark the pull request as ready for review",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runReady(cmd.Context(), args))
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchMerge, "merge", false,
		"Merge automatically once the pull request is eligible")
	watchCmd.Flags().StringVar(&watchStrategy, "strategy", "",
		"Merge strategy for --merge (merge, squash, rebase)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0,
		"Watch budget before giving up (default from config)")

	mergeCmd.Flags().StringVar(&mergeStrategy, "strategy", "",
		"Merge strategy (merge, squash, rebase)")
	mergeCmd.Flags().StringVar(&mergeTitle, "title", "",
		"Commit title for the merge")
	mergeCmd.Flags().StringVar(&mergeMessage, "message", "",
		"Commit message for the merge")
	mergeCmd.Flags().BoolVar(&mergeBypass, "bypass", false,
		"Override bypassable rule violations")
}

// runStatus evaluates once and prints the summary. A pull request that is
// open but not mergeable makes the command exit non-zero so scripts can
// gate on it.
func runStatus(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.EvaluateNow(ctx); err != nil {
		return err
	}
	state := s.ctrl.Snapshot()

	watch.NewRenderer(log).Summary(state)

	if state.PR.State == platform.StateOpen && state.CheckStatus != platform.CheckMergeable {
		return errNotMergeable
	}
	return nil
}

// runWatch runs the controller poll loop with a live display until the pull
// request reaches a terminal state or the session budget runs out. With
// --merge the watch submits the merge itself once an evaluation comes back
// clean.
func runWatch(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	renderer := watch.NewRenderer(log)
	if s.pr.State != platform.StateOpen {
		renderer.Summary(s.ctrl.Snapshot())
		return nil
	}

	timeout := s.cfg.PollTimeout()
	if watchTimeout > 0 {
		timeout = watchTimeout
	}
	watchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	renderer.Start(*s.pr)
	started := time.Now()
	s.ctrl.Start(watchCtx)

	attempted := false
	for state := range s.ctrl.Updates() {
		renderer.Render(state)
		if state.PR.State != platform.StateOpen {
			break
		}
		if watchMerge && !attempted && mergeReady(state) {
			attempted = true
			if err := submitWatchMerge(watchCtx, s, renderer, state); err != nil {
				return err
			}
		}
	}

	final := s.ctrl.Snapshot()
	if final.PR.State == platform.StateOpen && errors.Is(watchCtx.Err(), context.DeadlineExceeded) {
		renderer.Timeout(time.Since(started))
		return errWatchTimeout
	}
	renderer.Finish(final)

	if attempted && final.PR.State == platform.StateMerged {
		return cleanupAfterMerge(ctx, s)
	}
	return nil
}

// mergeReady reports whether the watch may submit its automatic merge: a
// settled clean evaluation with at least one allowed strategy and no rule
// violations. Violations are never bypassed automatically.
func mergeReady(state mergebox.State) bool {
	return state.CheckStatus == platform.CheckMergeable &&
		!state.RuleViolation() &&
		state.Allowed.Len() > 0
}

// submitWatchMerge selects the strategy and confirms the merge on behalf of
// the watcher.
func submitWatchMerge(ctx context.Context, s *session, renderer *watch.Renderer, state mergebox.State) error {
	strategy, err := chooseStrategy(state.Allowed, watchStrategy, s.cfg.Defaults.Strategy)
	if err != nil {
		return err
	}
	if strategy == platform.StrategySquash {
		title, message := squashDefaults(s)
		s.ctrl.SetCommitMessage(title, message)
	}
	if err := s.ctrl.Select(mergebox.OptionForStrategy(strategy)); err != nil {
		return err
	}

	spinner := renderer.BeginMerge(strategy)
	if _, err := s.ctrl.Confirm(ctx); err != nil {
		spinner.Error("Merge failed")
		return err
	}
	spinner.Success("Merge submitted")
	return nil
}

// runMerge selects and confirms a merge in one shot.
func runMerge(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.EvaluateNow(ctx); err != nil {
		return err
	}
	state := s.ctrl.Snapshot()

	if state.PR.State != platform.StateOpen {
		return fmt.Errorf("%w: %s", mergebox.ErrNotOpen, state.PR.State)
	}
	if state.CheckStatus == platform.CheckConflict {
		return errMergeConflict
	}

	strategy, err := chooseStrategy(state.Allowed, mergeStrategy, s.cfg.Defaults.Strategy)
	if err != nil {
		return err
	}

	if state.RuleViolation() {
		for _, violation := range state.Violations {
			if violation.Bypassable {
				log.Warn(violation.Message)
			} else {
				log.Error(violation.Message)
			}
		}
		if state.NotBypassable() {
			return mergebox.ErrNotBypassable
		}
		if !mergeBypass {
			return errBypassFlagRequired
		}
		if err := s.ctrl.SetBypass(true); err != nil {
			return err
		}
	}

	title, message := mergeTitle, mergeMessage
	if strategy == platform.StrategySquash && message == "" {
		defaultTitle, defaultMessage := squashDefaults(s)
		if title == "" {
			title = defaultTitle
		}
		message = defaultMessage
	}
	s.ctrl.SetCommitMessage(title, message)

	if err := s.ctrl.Select(mergebox.OptionForStrategy(strategy)); err != nil {
		return err
	}
	if _, err := s.ctrl.Confirm(ctx); err != nil {
		return err
	}

	logMerged(s.ctrl.Snapshot().PR)
	return cleanupAfterMerge(ctx, s)
}

// chooseStrategy picks the strategy for a non-interactive merge: an explicit
// flag wins and must be allowed, the configured preference is used when the
// server allows it, and the first allowed strategy is the fallback.
func chooseStrategy(allowed platform.StrategySet, flagValue, preferred string) (platform.Strategy, error) {
	if flagValue != "" {
		strategy, err := platform.ParseStrategy(flagValue)
		if err != nil {
			return "", err
		}
		if !allowed.Contains(strategy) {
			return "", fmt.Errorf("%w: %s (allowed: %s)", errStrategyNotAllowed, strategy, allowed.String())
		}
		return strategy, nil
	}

	if preferred != "" {
		if strategy, err := platform.ParseStrategy(preferred); err == nil && allowed.Contains(strategy) {
			return strategy, nil
		}
	}

	if strategy, ok := allowed.First(); ok {
		return strategy, nil
	}
	return "", errNoStrategyAllowed
}

func runClose(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.Close(ctx); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("#%d closed", s.pr.Number))
	return nil
}

func runReopen(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.Reopen(ctx); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("#%d reopened", s.pr.Number))
	return nil
}

func runDraft(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.MarkDraft(ctx); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("#%d marked as draft", s.pr.Number))
	return nil
}

func runReady(ctx context.Context, args []string) error {
	s, err := newSession(ctx, args)
	if err != nil {
		return err
	}
	defer s.ctrl.Stop()

	if err := s.ctrl.ReadyForReview(ctx); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("#%d is ready for review", s.pr.Number))
	return nil
}
