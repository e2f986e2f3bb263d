package mergebox

import "errors"

// Error definitions for controller operations.
var (
	errNotBound          = errors.New("no pull request is bound")
	errNotOpen           = errors.New("pull request is not open")
	errNoSelection       = errors.New("no merge option is selected")
	errUnknownOption     = errors.New("unknown option")
	errEvaluationPending = errors.New("merge check has not settled yet")
	errOptionNotEligible = errors.New("selected option is not eligible")
	errBypassRequired    = errors.New("rule violations block the merge and bypass is not set")
	errNotBypassable     = errors.New("rule violations cannot be bypassed")
	errSourceBranchGone  = errors.New("source branch was deleted")

	// Exported errors for testing and external use.
	ErrNotBound          = errNotBound
	ErrNotOpen           = errNotOpen
	ErrNoSelection       = errNoSelection
	ErrUnknownOption     = errUnknownOption
	ErrEvaluationPending = errEvaluationPending
	ErrOptionNotEligible = errOptionNotEligible
	ErrBypassRequired    = errBypassRequired
	ErrNotBypassable     = errNotBypassable
	ErrSourceBranchGone  = errSourceBranchGone
)
