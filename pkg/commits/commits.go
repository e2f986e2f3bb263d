// Package commits provides commit history retrieval and squash message
// assembly for mergegate.
package commits

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	// MaxCommitsToRetrieve caps how deep a history walk goes.
	MaxCommitsToRetrieve = 1000
	// DefaultShortHashLength is how many hash characters listings show.
	DefaultShortHashLength = 7
)

// errStopIteration ends a commit walk once a stop hash is reached.
var errStopIteration = errors.New("stop iteration")

// Retriever walks commit history of a local repository.
type Retriever struct {
	repo   *git.Repository
	logger *slog.Logger
}

// NewRetriever creates a retriever over the given repository.
func NewRetriever(repo *git.Repository) *Retriever {
	return &Retriever{
		repo:   repo,
		logger: slog.Default(),
	}
}

// SetLogger replaces the default slog logger.
func (r *Retriever) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// GetCommitsSinceBranch retrieves commits from currentBranch since it diverged
// from baseBranch, newest first. Only commits unique to currentBranch are
// returned; if baseBranch has advanced past the divergence point the merge
// base still bounds the walk. Returns ErrNoCommits if nothing diverged.
func (r *Retriever) GetCommitsSinceBranch(currentBranch, baseBranch string) ([]Commit, error) {
	r.logger.Debug("walking commits unique to branch", "branch", currentBranch, "base", baseBranch)

	currentHash, err := r.branchHash(currentBranch)
	if err != nil {
		return nil, err
	}
	baseHash, err := r.branchHash(baseBranch)
	if err != nil {
		return nil, err
	}

	stop := r.stopHashes(currentHash, baseHash)

	commitIter, err := r.repo.Log(&git.LogOptions{From: currentHash})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log for branch %s: %w", currentBranch, err)
	}

	var commits []Commit
	err = commitIter.ForEach(func(c *object.Commit) error {
		switch {
		case stop[c.Hash]:
			return errStopIteration
		case len(commits) >= MaxCommitsToRetrieve:
			return storer.ErrStop
		}
		commits = append(commits, ParseCommit(c))
		return nil
	})
	if errors.Is(err, errStopIteration) || errors.Is(err, storer.ErrStop) {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits for branch %s: %w", currentBranch, err)
	}

	r.logger.Debug("commit walk finished", "branch", currentBranch, "base", baseBranch, "count", len(commits))

	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	return commits, nil
}

// branchHash resolves a branch name to a commit hash, trying the local branch
// first and the origin remote-tracking branch second. Target branches of a
// pull request often exist only as remote-tracking references locally.
func (r *Retriever) branchHash(name string) (plumbing.Hash, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == nil {
		return ref.Hash(), nil
	}

	remoteRef, remoteErr := r.repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true)
	if remoteErr == nil {
		return remoteRef.Hash(), nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to get reference for branch %s: %w", name, err)
}

// stopHashes returns the hashes at which a walk from currentHash must stop:
// the base head itself plus every merge base of the two branches.
func (r *Retriever) stopHashes(currentHash, baseHash plumbing.Hash) map[plumbing.Hash]bool {
	stop := map[plumbing.Hash]bool{baseHash: true}

	currentCommit, err := r.repo.CommitObject(currentHash)
	if err != nil {
		return stop
	}
	baseCommit, err := r.repo.CommitObject(baseHash)
	if err != nil {
		return stop
	}

	bases, err := currentCommit.MergeBase(baseCommit)
	if err != nil {
		r.logger.Debug("merge base lookup failed, stopping at the base head only", "error", err)
		return stop
	}
	for _, base := range bases {
		stop[base.Hash] = true
	}

	return stop
}
