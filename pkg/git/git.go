// Package git provides local repository introspection: the checked-out
// branch, the default branch, remote URLs, and which hosting platform the
// origin remote points at. It also tidies the working tree after a merge.
package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/mergegate/mergegate/internal/logger"
	"github.com/sgaunet/bullets"
)

// Platform identifies the hosting service behind the origin remote.
type Platform string

const (
	PlatformGitLab Platform = "gitlab"
	PlatformGitHub Platform = "github"
)

var (
	errNoMainBranch    = errors.New("could not determine the default branch")
	errHeadNotBranch   = errors.New("HEAD is not pointing to a branch")
	errNoRemoteURL     = errors.New("no URLs configured for remote")
	errUnknownPlatform = errors.New("repository is not hosted on GitLab or GitHub")

	// Exported errors for testing and external use.
	ErrNoMainBranch    = errNoMainBranch
	ErrHeadNotBranch   = errHeadNotBranch
	ErrNoRemoteURL     = errNoRemoteURL
	ErrUnknownPlatform = errUnknownPlatform
)

// Repository wraps a go-git repository for read-mostly introspection.
type Repository struct {
	repo *git.Repository
	log  *bullets.Logger
}

// OpenRepository opens the repository containing path. The .git directory
// is searched upward, so subdirectories of a checkout work.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{repo: repo, log: logger.NoLogger()}, nil
}

// SetLogger sets the logger used for repository operations.
func (r *Repository) SetLogger(log *bullets.Logger) {
	r.log = log
}

// Unwrap returns the underlying go-git repository for callers that walk
// commit history directly.
func (r *Repository) Unwrap() *git.Repository {
	return r.repo
}

// GetCurrentBranch returns the short name of the checked-out branch.
func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", errHeadNotBranch
	}

	return head.Name().Short(), nil
}

// GetMainBranch resolves the repository's default branch. It prefers the
// locally recorded origin HEAD and falls back to the usual names when that
// symref was never fetched. No network access is required.
func (r *Repository) GetMainBranch() (string, error) {
	ref, err := r.repo.Reference(plumbing.NewRemoteHEADReferenceName("origin"), true)
	if err == nil && ref.Name().IsRemote() {
		if branch, ok := strings.CutPrefix(ref.Name().Short(), "origin/"); ok && branch != "HEAD" {
			return branch, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if r.branchExists(candidate) {
			return candidate, nil
		}
	}

	return "", errNoMainBranch
}

func (r *Repository) branchExists(branchName string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(branchName), true)
	return err == nil
}

// GetRemoteURL returns the first URL configured for the named remote.
func (r *Repository) GetRemoteURL(remoteName string) (string, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", remoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: %s", errNoRemoteURL, remoteName)
	}

	return urls[0], nil
}

// DetectPlatform inspects the origin remote URL and reports the hosting
// platform. gitlabURL and githubURL are the configured base URLs of
// self-hosted instances; empty strings match only the public hosts.
func (r *Repository) DetectPlatform(gitlabURL, githubURL string) (Platform, error) {
	remoteURL, err := r.GetRemoteURL("origin")
	if err != nil {
		return "", err
	}

	host := hostOf(remoteURL)
	switch {
	case host == "gitlab.com" || (gitlabURL != "" && host == hostOf(gitlabURL)):
		r.log.Debug("Detected GitLab remote: " + host)
		return PlatformGitLab, nil
	case host == "github.com" || (githubURL != "" && host == hostOf(githubURL)):
		r.log.Debug("Detected GitHub remote: " + host)
		return PlatformGitHub, nil
	}

	return "", fmt.Errorf("%w: %s", errUnknownPlatform, host)
}

// hostOf extracts the host from https, ssh and scp-like remote URLs.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}

	// scp-like syntax: git@host:path
	if at := strings.Index(raw, "@"); at >= 0 && !strings.Contains(raw, "://") {
		rest := raw[at+1:]
		if host, _, found := strings.Cut(rest, ":"); found {
			return host
		}
		return rest
	}

	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		return parsed.Hostname()
	}

	// Bare host, possibly with a trailing path.
	host, _, _ := strings.Cut(raw, "/")
	return host
}
