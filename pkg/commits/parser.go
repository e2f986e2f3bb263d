package commits

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// ParseCommit converts a go-git commit into the domain Commit type.
func ParseCommit(gitCommit *object.Commit) Commit {
	title, body := ParseCommitMessage(gitCommit.Message)

	parents := make([]string, len(gitCommit.ParentHashes))
	for i, hash := range gitCommit.ParentHashes {
		parents[i] = hash.String()
	}

	hash := gitCommit.Hash.String()
	return Commit{
		Hash:         hash,
		ShortHash:    hash[:DefaultShortHashLength],
		Message:      gitCommit.Message,
		Title:        title,
		Body:         body,
		Author:       fmt.Sprintf("%s <%s>", gitCommit.Author.Name, gitCommit.Author.Email),
		Timestamp:    gitCommit.Author.When,
		ParentHashes: parents,
	}
}

// ParseCommitMessage splits a commit message into a trimmed title (first
// line) and body (everything after). A single-line message has an empty
// body.
func ParseCommitMessage(fullMessage string) (string, string) {
	title, body, _ := strings.Cut(fullMessage, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body)
}

// FilterValidCommits drops merge commits and commits with empty messages.
func FilterValidCommits(commits []Commit) []Commit {
	valid := make([]Commit, 0, len(commits))
	for _, c := range commits {
		if c.IsMergeCommit() || !c.IsValid() {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}
