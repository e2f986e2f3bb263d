package commits

import (
	"fmt"
	"strings"
)

// DefaultSquashMessage builds the commit title and message a squash merge
// uses when the author supplies none. The title is the pull request title
// with the request number appended; the message lists the subject line of
// every squashed commit, oldest first. Merge commits and commits with empty
// messages are left out.
//
// The commits argument is expected newest first, as returned by
// [Retriever.GetCommitsSinceBranch].
func DefaultSquashMessage(title string, number int, commits []Commit) (string, string) {
	subject := fmt.Sprintf("%s (#%d)", title, number)

	valid := FilterValidCommits(commits)
	if len(valid) == 0 {
		return subject, ""
	}

	lines := make([]string, 0, len(valid))
	for i := len(valid) - 1; i >= 0; i-- {
		lines = append(lines, "* "+valid[i].Title)
	}

	return subject, strings.Join(lines, "\n")
}
