package git_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/mergegate/mergegate/pkg/git"
)

// TestCleanupReport_Outcomes exercises Success, PartialSuccess, and
// FirstError together across the step combinations Cleanup can produce.
func TestCleanupReport_Outcomes(t *testing.T) {
	errSwitch := errors.New("switch failed")
	errPull := errors.New("pull failed")
	errPrune := errors.New("prune failed")
	errDelete := errors.New("delete failed")

	tests := []struct {
		name       string
		report     git.CleanupReport
		success    bool
		partial    bool
		firstError error
	}{
		{
			name: "every_step_completed",
			report: git.CleanupReport{
				SwitchedBranch: true,
				PulledChanges:  true,
				Pruned:         true,
				DeletedBranch:  true,
			},
			success: true,
			partial: true,
		},
		{
			name: "best_effort_steps_failed",
			report: git.CleanupReport{
				SwitchedBranch: true,
				PulledChanges:  true,
				PruneError:     errPrune,
				DeleteError:    errDelete,
			},
			success:    true,
			partial:    true,
			firstError: errPrune,
		},
		{
			name: "delete_is_the_only_failure",
			report: git.CleanupReport{
				SwitchedBranch: true,
				PulledChanges:  true,
				Pruned:         true,
				DeleteError:    errDelete,
			},
			success:    true,
			partial:    true,
			firstError: errDelete,
		},
		{
			name: "pull_failed_after_the_switch",
			report: git.CleanupReport{
				SwitchedBranch: true,
				PullError:      errPull,
			},
			partial:    true,
			firstError: errPull,
		},
		{
			name: "switch_failed_before_anything_ran",
			report: git.CleanupReport{
				SwitchError: errSwitch,
			},
			firstError: errSwitch,
		},
		{
			name: "switch_error_shadows_later_errors",
			report: git.CleanupReport{
				SwitchError: errSwitch,
				PullError:   errPull,
				PruneError:  errPrune,
				DeleteError: errDelete,
			},
			firstError: errSwitch,
		},
		{
			name: "empty_report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Success(); got != tt.success {
				t.Errorf("Success() = %v, want %v", got, tt.success)
			}
			if got := tt.report.PartialSuccess(); got != tt.partial {
				t.Errorf("PartialSuccess() = %v, want %v", got, tt.partial)
			}
			if got := tt.report.FirstError(); got != tt.firstError {
				t.Errorf("FirstError() = %v, want %v", got, tt.firstError)
			}
		})
	}
}

// TestCleanup_SwitchFailureAbortsEarly verifies that a failed branch switch
// stops the cleanup and produces an error with recovery instructions.
func TestCleanup_SwitchFailureAbortsEarly(t *testing.T) {
	tmpDir := t.TempDir()
	underlying := initTestRepo(t, tmpDir, "https://gitlab.com/group/project.git")
	commitFile(t, underlying, tmpDir)

	repo, err := git.OpenRepository(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}

	report := repo.Cleanup(context.Background(), "does-not-exist", "feature/test-123")

	if report.Success() {
		t.Error("Expected cleanup to fail when the target branch does not exist")
	}
	if report.PartialSuccess() {
		t.Error("Expected no steps to complete when the switch fails")
	}
	if report.SwitchError == nil {
		t.Fatal("Expected SwitchError to be set")
	}
	if !strings.Contains(report.SwitchError.Error(), "git stash") {
		t.Errorf("Expected recovery instructions in switch error, got: %v", report.SwitchError)
	}
	if report.PullError != nil || report.PruneError != nil || report.DeleteError != nil {
		t.Error("Expected no further steps to run after the switch failure")
	}
	if report.FirstError() != report.SwitchError {
		t.Error("Expected FirstError() to return the switch error")
	}
	if report.TargetBranch != "does-not-exist" || report.SourceBranch != "feature/test-123" {
		t.Error("Expected report metadata to carry the requested branches")
	}
}

// TestSwitchBranch verifies switching between local branches.
func TestSwitchBranch(t *testing.T) {
	tmpDir := t.TempDir()
	underlying := initTestRepo(t, tmpDir, "https://gitlab.com/group/project.git")
	hash := commitFile(t, underlying, tmpDir)

	branchRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature/widget"), hash)
	if err := underlying.Storer.SetReference(branchRef); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	repo, err := git.OpenRepository(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}

	if err := repo.SwitchBranch(context.Background(), "feature/widget"); err != nil {
		t.Fatalf("SwitchBranch() error: %v", err)
	}

	branch, err := repo.GetCurrentBranch()
	if err != nil {
		t.Fatalf("Failed to get current branch: %v", err)
	}
	if branch != "feature/widget" {
		t.Errorf("Expected current branch 'feature/widget', got: %s", branch)
	}
}

// TestDeleteBranch verifies local branch deletion.
func TestDeleteBranch(t *testing.T) {
	tmpDir := t.TempDir()
	underlying := initTestRepo(t, tmpDir, "https://gitlab.com/group/project.git")
	hash := commitFile(t, underlying, tmpDir)

	branchName := plumbing.NewBranchReferenceName("feature/done")
	if err := underlying.Storer.SetReference(plumbing.NewHashReference(branchName, hash)); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	repo, err := git.OpenRepository(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}

	if err := repo.DeleteBranch(context.Background(), "feature/done"); err != nil {
		t.Fatalf("DeleteBranch() error: %v", err)
	}

	if _, err := underlying.Reference(branchName, false); err == nil {
		t.Error("Expected branch reference to be removed")
	}
}
