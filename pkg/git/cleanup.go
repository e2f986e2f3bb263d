package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CleanupReport tracks the outcome of each post-merge cleanup step.
type CleanupReport struct {
	SwitchedBranch bool
	PulledChanges  bool
	Pruned         bool
	DeletedBranch  bool

	// Per-step failures, nil when the step completed or never ran.
	SwitchError error
	PullError   error
	PruneError  error
	DeleteError error

	// Branches the cleanup operated on.
	TargetBranch string
	SourceBranch string
}

// Success reports whether both critical steps, the branch switch and the
// pull, completed.
func (r *CleanupReport) Success() bool {
	return r.SwitchedBranch && r.PulledChanges
}

// PartialSuccess reports whether any step completed.
func (r *CleanupReport) PartialSuccess() bool {
	return r.SwitchedBranch || r.PulledChanges || r.Pruned || r.DeletedBranch
}

// FirstError returns the earliest failure in execution order, or nil when
// every step that ran succeeded.
func (r *CleanupReport) FirstError() error {
	for _, err := range []error{r.SwitchError, r.PullError, r.PruneError, r.DeleteError} {
		if err != nil {
			return err
		}
	}
	return nil
}

// SwitchBranch checks out the given local branch.
func (r *Repository) SwitchBranch(ctx context.Context, branchName string) error {
	return r.runWithTimeout(ctx, "switch", func(context.Context) error {
		worktree, err := r.repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree: %w", err)
		}

		return worktree.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branchName),
		})
	})
}

// Pull updates the current branch from origin. An already up-to-date
// branch is not an error.
func (r *Repository) Pull(ctx context.Context) error {
	return r.runWithTimeout(ctx, "pull", func(ctx context.Context) error {
		worktree, err := r.repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree: %w", err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return err
	})
}

// FetchAndPrune fetches from origin and drops remote-tracking refs whose
// branches are gone, such as a source branch deleted after merging.
func (r *Repository) FetchAndPrune(ctx context.Context) error {
	return r.runWithTimeout(ctx, "fetch and prune", func(ctx context.Context) error {
		err := r.repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: "origin",
			Prune:      true,
		})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return err
	})
}

// DeleteBranch removes the local branch reference.
func (r *Repository) DeleteBranch(ctx context.Context, branchName string) error {
	return r.runWithTimeout(ctx, "delete branch", func(context.Context) error {
		return r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(branchName))
	})
}

// Cleanup tidies the working tree after a pull request merged: switch to
// the target branch, pull the merge result, prune remote-tracking refs,
// and delete the local source branch.
//
// Switch and pull are critical and stop the sequence on failure; prune and
// branch deletion are best-effort and only logged.
func (r *Repository) Cleanup(ctx context.Context, targetBranch, sourceBranch string) *CleanupReport {
	report := &CleanupReport{
		TargetBranch: targetBranch,
		SourceBranch: sourceBranch,
	}

	if err := r.SwitchBranch(ctx, targetBranch); err != nil {
		report.SwitchError = fmt.Errorf(
			"failed to switch to %s: %w\n\n"+
				"Resolve the working tree manually, then retry:\n"+
				"  - commit or stash local changes (git stash)\n"+
				"  - run: git switch %s",
			targetBranch, err, targetBranch)
		return report
	}
	report.SwitchedBranch = true

	if err := r.Pull(ctx); err != nil {
		report.PullError = fmt.Errorf(
			"failed to pull the merge result: %w\n\n"+
				"Please resolve any conflicts manually and run: git pull",
			err)
		return report
	}
	report.PulledChanges = true

	if err := r.FetchAndPrune(ctx); err != nil {
		report.PruneError = fmt.Errorf(
			"failed to prune remote-tracking branches: %w\n\n"+
				"You can run it manually: git fetch --prune",
			err)
		r.log.Warn("Prune failed, continuing with cleanup")
	} else {
		report.Pruned = true
	}

	if err := r.DeleteBranch(ctx, sourceBranch); err != nil {
		report.DeleteError = fmt.Errorf(
			"failed to delete local branch: %w\n\n"+
				"You can manually delete it with: git branch -D %s",
			err, sourceBranch)
		r.log.Warn("Local branch deletion failed, cleanup is otherwise complete")
	} else {
		report.DeletedBranch = true
	}

	return report
}
