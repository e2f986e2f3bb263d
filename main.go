// Package main provides the entry point for the mergegate CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sgaunet/bullets"
	"github.com/spf13/cobra"

	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/internal/security"
	"github.com/mergegate/mergegate/internal/ui"
	"github.com/mergegate/mergegate/internal/watch"
	"github.com/mergegate/mergegate/pkg/commits"
	"github.com/mergegate/mergegate/pkg/config"
	"github.com/mergegate/mergegate/pkg/git"
	"github.com/mergegate/mergegate/pkg/mergebox"
	"github.com/mergegate/mergegate/pkg/platform"
)

var (
	errOnTargetBranch = errors.New("you are on the target branch. Please checkout the source branch of a pull request")
	errInvalidNumber  = errors.New("pull request number must be an integer")
	errNoPullRequest  = errors.New("no pull request found")
	errUnknownAction  = errors.New("unsupported action")
)

var (
	logLevel string
	log      *bullets.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mergegate [number]",
	Short: "Merge eligibility and action panel for GitLab and GitHub",
	Long: `mergegate evaluates whether a pull/merge request on GitLab or GitHub can be
merged right now, shows which merge strategies the server allows and which
rules still block the merge, and executes merges and state transitions.

Without a subcommand it opens an interactive action panel for the pull
request of the checked-out branch.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		log = logger.NewLogger(logLevel)
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runPanel(cmd.Context(), args))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"Set log level (debug, info, warn, error)")
	rootCmd.AddCommand(statusCmd, watchCmd, mergeCmd, closeCmd, reopenCmd, draftCmd, readyCmd)
}

func main() {
	exitOnError(rootCmd.Execute())
}

// exitOnError is the error boundary of every command: print the sanitized
// message and exit non-zero.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", security.SanitizeString(err.Error()))
	os.Exit(1)
}

// session bundles what every command needs once the pull request is
// resolved: the configuration, the local repository, the provider of its
// hosting platform, and a controller bound to the pull request.
type session struct {
	cfg      *config.Config
	repo     *git.Repository
	provider platform.Provider
	ctrl     *mergebox.Controller
	pr       *platform.PullRequest
}

// newSession loads the configuration, detects the platform behind origin,
// initializes the provider, resolves the pull request, and binds a
// controller to it.
func newSession(ctx context.Context, args []string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Debug("Configuration loaded")

	repo, err := git.OpenRepository(".")
	if err != nil {
		return nil, err
	}
	repo.SetLogger(log)

	detected, err := repo.DetectPlatform(cfg.GitLab.URL, cfg.GitHub.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to detect platform: %w", err)
	}

	remoteURL, err := repo.GetRemoteURL("origin")
	if err != nil {
		return nil, err
	}

	provider, err := platform.NewProvider(detected, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug("Platform: " + provider.PlatformName())

	if err := provider.Initialize(remoteURL); err != nil {
		return nil, err
	}

	pr, err := resolvePullRequest(ctx, provider, repo, cfg, args)
	if err != nil {
		return nil, err
	}
	log.Debug(fmt.Sprintf("Resolved #%d: %s", pr.Number, pr.Title))

	ctrl := mergebox.New(provider, mergebox.Options{
		Logger:             log,
		Interval:           cfg.PollInterval(),
		DeleteSourceBranch: cfg.Defaults.DeleteSourceBranch,
	})
	ctrl.Bind(ctx, pr)

	return &session{cfg: cfg, repo: repo, provider: provider, ctrl: ctrl, pr: pr}, nil
}

// resolvePullRequest locates the pull request a command operates on: an
// explicit number argument wins, otherwise the open pull request of the
// checked-out branch into the configured or detected target branch.
func resolvePullRequest(
	ctx context.Context,
	provider platform.Provider,
	repo *git.Repository,
	cfg *config.Config,
	args []string,
) (*platform.PullRequest, error) {
	if len(args) > 0 {
		number, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errInvalidNumber, args[0])
		}
		return provider.GetPullRequest(ctx, number)
	}

	sourceBranch, err := repo.GetCurrentBranch()
	if err != nil {
		return nil, err
	}

	targetBranch := cfg.Defaults.TargetBranch
	if targetBranch == "" {
		targetBranch, err = repo.GetMainBranch()
		if err != nil {
			return nil, err
		}
	}
	if sourceBranch == targetBranch {
		return nil, fmt.Errorf("%w (%s)", errOnTargetBranch, targetBranch)
	}

	pr, err := provider.FindByBranch(ctx, sourceBranch, targetBranch)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return nil, fmt.Errorf("%w for %s into %s", errNoPullRequest, sourceBranch, targetBranch)
		}
		return nil, err
	}
	return pr, nil
}

// runPanel drives the interactive flow: evaluate once, render the merge box,
// prompt for an action, and execute it.
func runPanel(ctx context.Context, args []string) error {
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

	prompter := ui.NewPrompter()
	action, err := prompter.SelectAction(mergebox.ActionsFor(state))
	if err != nil {
		if errors.Is(err, ui.ErrNoEnabledActions) {
			log.Info("No actions available for this pull request")
			return nil
		}
		return err
	}

	return runAction(ctx, s, prompter, action)
}

// runAction confirms and executes the chosen panel action.
func runAction(ctx context.Context, s *session, prompter *ui.Prompter, action mergebox.Action) error {
	state := s.ctrl.Snapshot()

	if action.Kind == mergebox.ActionMergeOption {
		return runPanelMerge(ctx, s, prompter, action)
	}

	confirmed, err := prompter.ConfirmAction(action, state.PR)
	if err != nil {
		return err
	}
	if !confirmed {
		log.Info("Aborted")
		return nil
	}

	switch action.Kind {
	case mergebox.ActionClose:
		if err := s.ctrl.Close(ctx); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("#%d closed", state.PR.Number))

	case mergebox.ActionReopen:
		if err := s.ctrl.Reopen(ctx); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("#%d reopened", state.PR.Number))

	case mergebox.ActionMarkDraft:
		if err := s.ctrl.MarkDraft(ctx); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("#%d marked as draft", state.PR.Number))

	case mergebox.ActionReadyForReview:
		if err := s.ctrl.ReadyForReview(ctx); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("#%d is ready for review", state.PR.Number))

	case mergebox.ActionDeleteBranch:
		if err := s.provider.DeleteSourceBranch(ctx, state.PR.SourceBranch); err != nil {
			return err
		}
		log.Info("Deleted branch " + state.PR.SourceBranch)

	case mergebox.ActionRestoreBranch:
		if err := s.provider.RestoreSourceBranch(ctx, &state.PR); err != nil {
			return err
		}
		log.Info("Restored branch " + state.PR.SourceBranch)

	default:
		return fmt.Errorf("%w: %s", errUnknownAction, action.Kind)
	}
	return nil
}

// runPanelMerge drives the interactive merge path: bypass opt-in when rule
// violations stand, squash message defaulting, inline confirmation, submit.
func runPanelMerge(ctx context.Context, s *session, prompter *ui.Prompter, action mergebox.Action) error {
	state := s.ctrl.Snapshot()

	if state.RuleViolation() {
		if state.NotBypassable() {
			return mergebox.ErrNotBypassable
		}
		bypass, err := prompter.ConfirmBypass(state.Violations)
		if err != nil {
			return err
		}
		if !bypass {
			log.Info("Aborted")
			return nil
		}
		if err := s.ctrl.SetBypass(true); err != nil {
			return err
		}
	}

	if action.Option == mergebox.OptionSquash {
		title, message := squashDefaults(s)
		s.ctrl.SetCommitMessage(title, message)
	}

	s.ctrl.ShowConfirmation(true)
	confirmed, err := prompter.ConfirmAction(action, state.PR)
	if err != nil {
		return err
	}
	if !confirmed {
		s.ctrl.ShowConfirmation(false)
		log.Info("Aborted")
		return nil
	}

	if err := s.ctrl.Select(action.Option); err != nil {
		return err
	}
	if _, err := s.ctrl.Confirm(ctx); err != nil {
		return err
	}

	logMerged(s.ctrl.Snapshot().PR)
	return cleanupAfterMerge(ctx, s)
}

// squashDefaults builds the squash commit title and message from the local
// commit list between the pull request branches. Outside a checkout of the
// source branch the history may be missing; the server defaults cover that.
func squashDefaults(s *session) (string, string) {
	retriever := commits.NewRetriever(s.repo.Unwrap())
	list, err := retriever.GetCommitsSinceBranch(s.pr.SourceBranch, s.pr.TargetBranch)
	if err != nil {
		log.Debug(fmt.Sprintf("Falling back to the server squash message: %v", err))
		return "", ""
	}
	for _, c := range commits.FilterValidCommits(list) {
		log.Debug("Squashing " + c.FormattedForDisplay())
	}
	return commits.DefaultSquashMessage(s.pr.Title, int(s.pr.Number), list)
}

// logMerged prints the merge outcome.
func logMerged(pr platform.PullRequest) {
	summary := fmt.Sprintf("#%d merged", pr.Number)
	if pr.MergedBy != "" {
		summary += " by " + pr.MergedBy
	}
	log.Info(summary)
}

// cleanupAfterMerge tidies the local checkout when it sits on the merged
// source branch: switch to the target, pull the merge result, prune, and
// delete the local source branch. Other checkouts are left alone.
func cleanupAfterMerge(ctx context.Context, s *session) error {
	current, err := s.repo.GetCurrentBranch()
	if err != nil || current != s.pr.SourceBranch {
		return nil
	}

	log.Info("Cleaning up local repository...")
	report := s.repo.Cleanup(ctx, s.pr.TargetBranch, s.pr.SourceBranch)
	if !report.Success() {
		return fmt.Errorf("failed to clean up after merge: %w", report.FirstError())
	}
	log.Info("Switched to " + s.pr.TargetBranch)
	return nil
}
