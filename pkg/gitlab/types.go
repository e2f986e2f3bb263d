package gitlab

import (
	"github.com/mergegate/mergegate/internal/security"
	"github.com/sgaunet/bullets"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Constants for GitLab API operations.
const (
	minURLParts = 2

	// Merge request states as reported by the API.
	mrStateOpened = "opened"
	mrStateClosed = "closed"
	mrStateMerged = "merged"

	// State events accepted by the update endpoint.
	stateEventClose  = "close"
	stateEventReopen = "reopen"

	// draftPrefix is the canonical draft marker prepended to MR titles.
	draftPrefix = "Draft: "
)

// Client represents a GitLab API client wrapper.
type Client struct {
	client       *gitlab.Client
	token        security.SecureToken
	projectID    string
	mergeMethod  string
	squashOption string
	canBypass    bool
	log          *bullets.Logger
}

// MergeSettings describes the project-level merge configuration that bounds
// which strategies a merge request may use.
type MergeSettings struct {
	// Method is the project merge method: "merge", "rebase_merge", or "ff".
	Method string
	// SquashOption is "never", "always", "default_on", or "default_off".
	SquashOption string
	// CanBypass reports whether the token holder has maintainer access and
	// may therefore override bypassable merge rules.
	CanBypass bool
}

// AcceptOptions holds parameters for accepting a merge request.
type AcceptOptions struct {
	Squash        bool
	CommitTitle   string
	CommitMessage string
	// SHA, when set, makes the server reject the merge if the source head
	// moved since this value was observed.
	SHA                string
	RemoveSourceBranch bool
}
