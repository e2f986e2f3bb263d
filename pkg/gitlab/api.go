package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/mergegate/mergegate/internal/logger"
	"github.com/mergegate/mergegate/internal/security"
	"github.com/mergegate/mergegate/internal/urlutil"
	"github.com/sgaunet/bullets"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// NewClient creates a new GitLab client. An empty baseURL targets gitlab.com;
// otherwise it points at a self-hosted instance.
func NewClient(baseURL string) (*Client, error) {
	token := os.Getenv("GITLAB_TOKEN")
	if token == "" {
		return nil, errTokenRequired
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}

	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &Client{
		client: client,
		token:  security.NewSecureToken(token),
		log:    logger.NoLogger(),
	}, nil
}

// SetLogger sets the logger for the GitLab client.
func (c *Client) SetLogger(logger *bullets.Logger) {
	c.log = logger
	security.DebugFields(c.log, "GitLab authentication configured", map[string]any{
		"method":      "token",
		"fingerprint": c.token.Fingerprint(),
	})
}

// SetProjectFromURL sets the project from a git remote URL and caches the
// project merge settings.
func (c *Client) SetProjectFromURL(url string) error {
	// https://gitlab.com/group/project.git and git@gitlab.com:group/project.git
	// both name the same project path.
	projectPath := extractProjectPath(strings.TrimSuffix(url, ".git"))
	if projectPath == "" {
		return errInvalidURLFormat
	}

	c.log.Debug("Setting GitLab project: " + projectPath)

	// Get project info to validate, get the project ID, and learn the merge
	// method and squash option that bound the allowed strategies.
	project, _, err := c.client.Projects.GetProject(projectPath, nil)
	if err != nil {
		return fmt.Errorf("failed to get project information: %w", err)
	}

	c.projectID = strconv.FormatInt(project.ID, 10)
	c.mergeMethod = string(project.MergeMethod)
	c.squashOption = string(project.SquashOption)
	c.canBypass = hasMaintainerAccess(project.Permissions)
	c.log.Debug(fmt.Sprintf("GitLab project set, ID: %s, merge method: %s, squash option: %s, maintainer: %v",
		c.projectID, c.mergeMethod, c.squashOption, c.canBypass))
	return nil
}

// hasMaintainerAccess reports whether the token holder has at least
// maintainer access on the project, directly or through its group.
func hasMaintainerAccess(permissions *gitlab.Permissions) bool {
	if permissions == nil {
		return false
	}
	var level gitlab.AccessLevelValue
	if permissions.ProjectAccess != nil && permissions.ProjectAccess.AccessLevel > level {
		level = permissions.ProjectAccess.AccessLevel
	}
	if permissions.GroupAccess != nil && permissions.GroupAccess.AccessLevel > level {
		level = permissions.GroupAccess.AccessLevel
	}
	return level >= gitlab.MaintainerPermissions
}

// extractProjectPath extracts the namespace/project path from a git URL.
// GitLab paths may nest subgroups, so every component after the host is
// kept rather than the last two.
func extractProjectPath(url string) string {
	return urlutil.PathTail(url, pathDepth(url))
}

// pathDepth counts the path components after the host. The scp-like syntax
// keeps the whole path after the colon, so the count is not used for it.
func pathDepth(url string) int {
	if strings.HasPrefix(url, "git@") {
		return minURLParts
	}
	// "https:", "" and the host occupy the first three slash-separated
	// parts; the same holds for ssh://git@host.
	const hostPrefixParts = 3
	parts := strings.Split(url, "/")
	if len(parts) <= hostPrefixParts {
		return 0
	}
	return len(parts) - hostPrefixParts
}

// MergeSettings returns the cached project merge configuration.
func (c *Client) MergeSettings() MergeSettings {
	return MergeSettings{
		Method:       c.mergeMethod,
		SquashOption: c.squashOption,
		CanBypass:    c.canBypass,
	}
}

// GetMergeRequest fetches a merge request with full details by IID.
func (c *Client) GetMergeRequest(ctx context.Context, mrIID int64) (*gitlab.MergeRequest, error) {
	if c.projectID == "" {
		return nil, errProjectNotSet
	}

	mr, resp, err := c.client.MergeRequests.GetMergeRequest(c.projectID, mrIID, nil, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: !%d", errMRNotFound, mrIID)
		}
		return nil, fmt.Errorf("failed to get merge request details: %w", err)
	}
	return mr, nil
}

// GetMergeRequestByBranch fetches the most recently updated merge request for
// the given source and target branches, regardless of state.
func (c *Client) GetMergeRequestByBranch(ctx context.Context, sourceBranch, targetBranch string) (*gitlab.MergeRequest, error) {
	if c.projectID == "" {
		return nil, errProjectNotSet
	}

	mrs, _, err := c.client.MergeRequests.ListProjectMergeRequests(c.projectID, &gitlab.ListProjectMergeRequestsOptions{
		SourceBranch: &sourceBranch,
		TargetBranch: &targetBranch,
		OrderBy:      gitlab.Ptr("updated_at"),
		Sort:         gitlab.Ptr("desc"),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}

	if len(mrs) == 0 {
		return nil, fmt.Errorf("%w: %s", errMRNotFound, sourceBranch)
	}

	// Get full MR details; the list endpoint omits merge status fields.
	return c.GetMergeRequest(ctx, mrs[0].IID)
}

// AcceptMergeRequest merges a merge request.
//
// The server re-validates eligibility: a stale SHA yields ErrStaleHead, an
// ineligible MR ErrMergeBlocked, and missing permission ErrMergeForbidden.
func (c *Client) AcceptMergeRequest(ctx context.Context, mrIID int64, opts AcceptOptions) (*gitlab.MergeRequest, error) {
	if c.projectID == "" {
		return nil, errProjectNotSet
	}

	c.log.Debug(fmt.Sprintf("Merging merge request, IID: %d, squash: %v", mrIID, opts.Squash))

	mergeOptions := &gitlab.AcceptMergeRequestOptions{
		Squash:                   gitlab.Ptr(opts.Squash),
		ShouldRemoveSourceBranch: gitlab.Ptr(opts.RemoveSourceBranch),
	}
	if opts.SHA != "" {
		mergeOptions.SHA = gitlab.Ptr(opts.SHA)
	}

	// Set commit message based on squash mode
	if opts.Squash {
		mergeOptions.SquashCommitMessage = gitlab.Ptr(joinCommitMessage(opts.CommitTitle, opts.CommitMessage))
	} else if opts.CommitTitle != "" || opts.CommitMessage != "" {
		mergeOptions.MergeCommitMessage = gitlab.Ptr(joinCommitMessage(opts.CommitTitle, opts.CommitMessage))
	}

	mr, resp, err := c.client.MergeRequests.AcceptMergeRequest(c.projectID, mrIID, mergeOptions, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapAcceptError(resp, err)
	}

	c.log.Debug("Merge request merged successfully")
	return mr, nil
}

// mapAcceptError converts accept endpoint failures into sentinel errors.
// The message is sanitized because the accept endpoint echoes server
// responses that may quote the request.
func mapAcceptError(resp *gitlab.Response, err error) error {
	if resp == nil {
		return security.SanitizeError(fmt.Errorf("failed to merge MR: %w", err))
	}
	switch resp.StatusCode {
	case http.StatusConflict:
		// 409 is returned when the sha parameter no longer matches the head.
		return security.SanitizeError(fmt.Errorf("%w: %w", errStaleHead, err))
	case http.StatusMethodNotAllowed, http.StatusNotAcceptable, http.StatusUnprocessableEntity:
		return security.SanitizeError(fmt.Errorf("%w: %w", errMergeBlocked, err))
	case http.StatusUnauthorized, http.StatusForbidden:
		return security.SanitizeError(fmt.Errorf("%w: %w", errMergeForbidden, err))
	default:
		return security.SanitizeError(fmt.Errorf("failed to merge MR: %w", err))
	}
}

// joinCommitMessage combines a commit title and body into one message.
func joinCommitMessage(title, body string) string {
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n\n" + body
	}
}

// UpdateMergeRequestState closes or reopens a merge request.
// Merged merge requests reject both transitions with ErrAlreadyMerged.
func (c *Client) UpdateMergeRequestState(ctx context.Context, mrIID int64, stateEvent string) (*gitlab.MergeRequest, error) {
	if c.projectID == "" {
		return nil, errProjectNotSet
	}
	if stateEvent != stateEventClose && stateEvent != stateEventReopen {
		return nil, fmt.Errorf("%w: unknown state event %q", errMergeBlocked, stateEvent)
	}

	current, err := c.GetMergeRequest(ctx, mrIID)
	if err != nil {
		return nil, err
	}
	if current.State == mrStateMerged {
		return nil, fmt.Errorf("%w: !%d", errAlreadyMerged, mrIID)
	}

	c.log.Debug(fmt.Sprintf("Updating merge request state, IID: %d, event: %s", mrIID, stateEvent))

	mr, resp, err := c.client.MergeRequests.UpdateMergeRequest(c.projectID, mrIID, &gitlab.UpdateMergeRequestOptions{
		StateEvent: gitlab.Ptr(stateEvent),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: !%d", errMRNotFound, mrIID)
		}
		return nil, fmt.Errorf("failed to update merge request state: %w", err)
	}
	return mr, nil
}

// SetDraft toggles the draft flag of a merge request by rewriting the title
// prefix, which is how GitLab models draft status.
func (c *Client) SetDraft(ctx context.Context, mrIID int64, draft bool) (*gitlab.MergeRequest, error) {
	if c.projectID == "" {
		return nil, errProjectNotSet
	}

	current, err := c.GetMergeRequest(ctx, mrIID)
	if err != nil {
		return nil, err
	}
	if current.State == mrStateMerged {
		return nil, fmt.Errorf("%w: !%d", errAlreadyMerged, mrIID)
	}
	if current.Draft == draft {
		return current, nil
	}

	var title string
	if draft {
		title = markTitleDraft(current.Title)
	} else {
		title = stripDraftPrefix(current.Title)
	}

	c.log.Debug(fmt.Sprintf("Toggling draft, IID: %d, draft: %v", mrIID, draft))

	mr, _, err := c.client.MergeRequests.UpdateMergeRequest(c.projectID, mrIID, &gitlab.UpdateMergeRequestOptions{
		Title: gitlab.Ptr(title),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to toggle draft status: %w", err)
	}
	return mr, nil
}

// markTitleDraft prepends the canonical draft prefix unless one is present.
func markTitleDraft(title string) string {
	if isDraftTitle(title) {
		return title
	}
	return draftPrefix + title
}

// stripDraftPrefix removes any recognized draft marker from the title.
// GitLab accepts "Draft:" in any case and the legacy "[Draft]" form.
func stripDraftPrefix(title string) string {
	for {
		trimmed := strings.TrimSpace(title)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "draft:"):
			title = trimmed[len("draft:"):]
		case strings.HasPrefix(lower, "[draft]"):
			title = trimmed[len("[draft]"):]
		default:
			return trimmed
		}
	}
}

// isDraftTitle reports whether the title carries a draft marker.
func isDraftTitle(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	return strings.HasPrefix(lower, "draft:") || strings.HasPrefix(lower, "[draft]")
}

// CreateBranch creates a branch at the given ref. Used to restore the source
// branch of a merged merge request.
func (c *Client) CreateBranch(ctx context.Context, branch, ref string) error {
	if c.projectID == "" {
		return errProjectNotSet
	}

	c.log.Debug(fmt.Sprintf("Creating branch %s at %s", branch, ref))

	_, _, err := c.client.Branches.CreateBranch(c.projectID, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(branch),
		Ref:    gitlab.Ptr(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

// DeleteBranch removes a branch from the remote.
func (c *Client) DeleteBranch(ctx context.Context, branch string) error {
	if c.projectID == "" {
		return errProjectNotSet
	}

	c.log.Debug("Deleting branch " + branch)

	resp, err := c.client.Branches.DeleteBranch(c.projectID, branch, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", errBranchNotFound, branch)
		}
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// BranchExists reports whether the branch still exists on the remote.
func (c *Client) BranchExists(ctx context.Context, branch string) (bool, error) {
	if c.projectID == "" {
		return false, errProjectNotSet
	}

	_, resp, err := c.client.Branches.GetBranch(c.projectID, branch, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get branch: %w", err)
	}
	return true, nil
}
