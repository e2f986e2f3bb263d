// Package github provides GitHub API client operations.
package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v69/github"
	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/internal/security"
	"github.com/mergegate/mergegate/internal/urlutil"
	"github.com/sgaunet/bullets"
	"golang.org/x/oauth2"
)

// NewClient creates a new GitHub client. An empty baseURL targets github.com;
// otherwise it points at a GitHub Enterprise instance.
func NewClient(baseURL string) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, errTokenRequired
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
	}

	return &Client{
		client:     client,
		httpClient: tc,
		token:      security.NewSecureToken(token),
		log:        logger.NoLogger(),
	}, nil
}

// SetLogger sets the logger for the GitHub client.
func (c *Client) SetLogger(logger *bullets.Logger) {
	c.log = logger
	security.DebugFields(c.log, "GitHub authentication configured", map[string]any{
		"method":      "token",
		"fingerprint": c.token.Fingerprint(),
	})
}

// SetRepositoryFromURL sets the repository from a git remote URL and caches
// the repository merge settings.
func (c *Client) SetRepositoryFromURL(url string) error {
	// https://github.com/owner/repo.git and git@github.com:owner/repo.git both
	// name the same owner/repo pair.
	ownerRepo := extractOwnerRepo(strings.TrimSuffix(url, ".git"))
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return errInvalidURLFormat
	}
	c.owner = owner
	c.repo = repo

	c.log.Debug(fmt.Sprintf("Setting GitHub repository: %s/%s", c.owner, c.repo))

	// Validate repository exists and learn which merge methods it allows.
	repository, _, err := c.client.Repositories.Get(context.Background(), c.owner, c.repo)
	if err != nil {
		return fmt.Errorf("failed to get repository information: %w", err)
	}

	c.settings = MergeSettings{
		AllowMergeCommit:    repository.GetAllowMergeCommit(),
		AllowSquashMerge:    repository.GetAllowSquashMerge(),
		AllowRebaseMerge:    repository.GetAllowRebaseMerge(),
		DeleteBranchOnMerge: repository.GetDeleteBranchOnMerge(),
		CanBypass:           repository.GetPermissions()["admin"],
	}

	c.log.Debug(fmt.Sprintf("GitHub repository set, merge: %v, squash: %v, rebase: %v",
		c.settings.AllowMergeCommit, c.settings.AllowSquashMerge, c.settings.AllowRebaseMerge))
	return nil
}

// extractOwnerRepo extracts the owner/repo path from a git URL.
func extractOwnerRepo(url string) string {
	return urlutil.PathTail(url, minURLParts)
}

// MergeSettings returns the cached repository merge configuration.
func (c *Client) MergeSettings() MergeSettings {
	return c.settings
}

// GetPullRequest fetches a pull request with full details by number.
func (c *Client) GetPullRequest(ctx context.Context, prNumber int) (*github.PullRequest, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errRepoNotSet
	}

	pr, resp, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, prNumber)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: #%d", errPRNotFound, prNumber)
		}
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// GetPullRequestByBranch fetches the most recently updated pull request for
// the given head and base branches, regardless of state.
func (c *Client) GetPullRequestByBranch(ctx context.Context, head, base string) (*github.PullRequest, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errRepoNotSet
	}

	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State:     "all",
		Head:      fmt.Sprintf("%s:%s", c.owner, head),
		Base:      base,
		Sort:      "updated",
		Direction: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	if len(prs) == 0 {
		return nil, fmt.Errorf("%w: %s", errPRNotFound, head)
	}

	// Get full PR details; the list endpoint omits mergeable_state.
	return c.GetPullRequest(ctx, prs[0].GetNumber())
}

// MergePullRequest merges a pull request.
//
// The server re-validates eligibility: a stale SHA yields ErrStaleHead, an
// ineligible PR ErrMergeBlocked, and missing permission ErrMergeForbidden.
func (c *Client) MergePullRequest(ctx context.Context, prNumber int, opts MergeOptions) (*github.PullRequestMergeResult, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errRepoNotSet
	}

	c.log.Debug(fmt.Sprintf("Merging pull request #%d using method: %s", prNumber, opts.Method))

	options := &github.PullRequestOptions{
		MergeMethod: opts.Method, // "squash", "merge", or "rebase"
		CommitTitle: opts.CommitTitle,
		SHA:         opts.SHA,
	}

	result, resp, err := c.client.PullRequests.Merge(ctx, c.owner, c.repo, prNumber, opts.CommitMessage, options)
	if err != nil {
		return nil, mapMergeError(resp, err)
	}

	c.log.Debug("Pull request merged successfully")
	return result, nil
}

// mapMergeError converts merge endpoint failures into sentinel errors.
// The message is sanitized because the merge endpoint echoes server responses
// that may quote the request.
func mapMergeError(resp *github.Response, err error) error {
	if resp == nil {
		return security.SanitizeError(fmt.Errorf("failed to merge pull request: %w", err))
	}
	switch resp.StatusCode {
	case http.StatusConflict:
		// 409 is returned when the sha parameter no longer matches the head.
		return security.SanitizeError(fmt.Errorf("%w: %w", errStaleHead, err))
	case http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return security.SanitizeError(fmt.Errorf("%w: %w", errMergeBlocked, err))
	case http.StatusForbidden, http.StatusUnauthorized:
		return security.SanitizeError(fmt.Errorf("%w: %w", errMergeForbidden, err))
	default:
		return security.SanitizeError(fmt.Errorf("failed to merge pull request: %w", err))
	}
}

// UpdatePullRequestState opens or closes a pull request.
// Merged pull requests reject both transitions with ErrAlreadyMerged.
func (c *Client) UpdatePullRequestState(ctx context.Context, prNumber int, state string) (*github.PullRequest, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errRepoNotSet
	}
	if state != prStateOpen && state != prStateClosed {
		return nil, fmt.Errorf("%w: unknown state %q", errMergeBlocked, state)
	}

	current, err := c.GetPullRequest(ctx, prNumber)
	if err != nil {
		return nil, err
	}
	if current.GetMerged() {
		return nil, fmt.Errorf("%w: #%d", errAlreadyMerged, prNumber)
	}

	c.log.Debug(fmt.Sprintf("Updating pull request state, number: %d, state: %s", prNumber, state))

	current.State = github.Ptr(state)
	pr, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, prNumber, current)
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request state: %w", err)
	}
	return pr, nil
}

// SetDraft toggles the draft flag of a pull request.
// The REST API has no draft transition, so this goes through GraphQL.
func (c *Client) SetDraft(ctx context.Context, prNumber int, draft bool) (*github.PullRequest, error) {
	if c.owner == "" || c.repo == "" {
		return nil, errRepoNotSet
	}

	current, err := c.GetPullRequest(ctx, prNumber)
	if err != nil {
		return nil, err
	}
	if current.GetMerged() {
		return nil, fmt.Errorf("%w: #%d", errAlreadyMerged, prNumber)
	}
	if current.GetDraft() == draft {
		return current, nil
	}

	c.log.Debug(fmt.Sprintf("Toggling draft, number: %d, draft: %v", prNumber, draft))

	if err := c.setDraftViaGraphQL(ctx, current.GetNodeID(), draft); err != nil {
		return nil, err
	}

	return c.GetPullRequest(ctx, prNumber)
}

// CreateBranch creates a branch ref at the given SHA. Used to restore the
// head branch of a merged pull request.
func (c *Client) CreateBranch(ctx context.Context, branch, sha string) error {
	if c.owner == "" || c.repo == "" {
		return errRepoNotSet
	}

	c.log.Debug(fmt.Sprintf("Creating branch %s at %s", branch, sha))

	ref := &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.Ptr(sha)},
	}
	_, _, err := c.client.Git.CreateRef(ctx, c.owner, c.repo, ref)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

// DeleteBranch deletes a branch from the remote repository.
func (c *Client) DeleteBranch(ctx context.Context, branch string) error {
	if c.owner == "" || c.repo == "" {
		return errRepoNotSet
	}

	c.log.Debug("Deleting branch " + branch)

	resp, err := c.client.Git.DeleteRef(ctx, c.owner, c.repo, "heads/"+branch)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			// 422 is what the ref API reports for a missing branch.
			return fmt.Errorf("%w: %s", errBranchNotFound, branch)
		}
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// BranchExists reports whether the branch still exists on the remote.
func (c *Client) BranchExists(ctx context.Context, branch string) (bool, error) {
	if c.owner == "" || c.repo == "" {
		return false, errRepoNotSet
	}

	_, resp, err := c.client.Repositories.GetBranch(ctx, c.owner, c.repo, branch, 0)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get branch: %w", err)
	}
	return true, nil
}
