package commits

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDisplayTitleLength caps commit titles in listings and logs.
const DefaultDisplayTitleLength = 80

// Commit is a single git commit carrying the fields the merge flow
// displays and builds squash messages from.
type Commit struct {
	// Hash is the full 40-character SHA-1.
	Hash string
	// ShortHash is the abbreviated form used in listings.
	ShortHash string
	// Message is the complete commit message, title and body included.
	Message string
	// Title is the first message line.
	Title string
	// Body holds everything after the first line.
	Body string
	// Author is rendered as "Name <email>".
	Author string
	// Timestamp is the commit time.
	Timestamp time.Time
	// ParentHashes has one entry per parent, two or more marks a merge.
	ParentHashes []string
}

// IsValid reports whether the commit message is non-blank.
func (c Commit) IsValid() bool {
	return strings.TrimSpace(c.Message) != ""
}

// IsMergeCommit reports whether the commit has more than one parent.
func (c Commit) IsMergeCommit() bool {
	return len(c.ParentHashes) > 1
}

// TitleTruncated shortens the title to maxLen runes, ellipsis included.
// Limits smaller than the ellipsis collapse to it.
func (c Commit) TitleTruncated(maxLen int) string {
	title := []rune(c.Title)
	if len(title) <= maxLen {
		return c.Title
	}
	if maxLen <= len("...") {
		return "..."
	}
	return string(title[:maxLen-len("...")]) + "..."
}

// FormattedForDisplay renders "[shorthash] title" for listings, with the
// title capped at DefaultDisplayTitleLength.
func (c Commit) FormattedForDisplay() string {
	return fmt.Sprintf("[%s] %s", c.ShortHash, c.TitleTruncated(DefaultDisplayTitleLength))
}
