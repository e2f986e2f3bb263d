package commits_test

import (
	"strings"
	"testing"

	"github.com/mergegate/mergegate/pkg/commits"
	"github.com/mergegate/mergegate/testing/fixtures"
)

// TestCommitClassification covers IsValid and IsMergeCommit together, since
// the filter applies both to every commit.
func TestCommitClassification(t *testing.T) {
	tests := []struct {
		name    string
		commit  commits.Commit
		valid   bool
		isMerge bool
	}{
		{
			name:   "regular commit",
			commit: fixtures.SingleCommit()[0],
			valid:  true,
		},
		{
			name:    "merge commit",
			commit:  fixtures.CommitsWithMerges()[1],
			valid:   true,
			isMerge: true,
		},
		{
			name:   "empty message",
			commit: fixtures.CommitsWithEmptyMessages()[0],
		},
		{
			name:   "whitespace only message",
			commit: fixtures.CommitsWithEmptyMessages()[1],
		},
		{
			name:   "initial commit without parents",
			commit: commits.Commit{Message: "chore: bootstrap", Title: "chore: bootstrap"},
			valid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.commit.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.commit.IsMergeCommit(); got != tt.isMerge {
				t.Errorf("IsMergeCommit() = %v, want %v", got, tt.isMerge)
			}
		})
	}
}

func TestTitleTruncated(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		maxLen int
		want   string
	}{
		{
			name:   "short title unchanged",
			title:  "fix: typo",
			maxLen: 50,
			want:   "fix: typo",
		},
		{
			name:   "exact length unchanged",
			title:  "12345",
			maxLen: 5,
			want:   "12345",
		},
		{
			name:   "long title gets an ellipsis",
			title:  "feat: teach the strategy picker to remember the last choice",
			maxLen: 24,
			want:   "feat: teach the strat...",
		},
		{
			name:   "multibyte title is cut between runes",
			title:  "fix: héhéhéhéhéhéhéhéhéhé",
			maxLen: 10,
			want:   "fix: hé...",
		},
		{
			name:   "tiny limit collapses to the ellipsis",
			title:  "anything",
			maxLen: 3,
			want:   "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := commits.Commit{Title: tt.title}
			if got := c.TitleTruncated(tt.maxLen); got != tt.want {
				t.Errorf("TitleTruncated(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormattedForDisplay(t *testing.T) {
	t.Run("short title", func(t *testing.T) {
		c := commits.Commit{ShortHash: "a3f81b2", Title: "feat: add merge panel"}
		want := "[a3f81b2] feat: add merge panel"
		if got := c.FormattedForDisplay(); got != want {
			t.Errorf("FormattedForDisplay() = %q, want %q", got, want)
		}
	})

	t.Run("long title is capped at the display length", func(t *testing.T) {
		c := commits.Commit{
			ShortHash: "a3f81b2",
			Title:     strings.Repeat("long ", 30),
		}
		got := c.FormattedForDisplay()
		if !strings.HasSuffix(got, "...") {
			t.Errorf("FormattedForDisplay() = %q, expected an ellipsis", got)
		}
		wantLen := len("[a3f81b2] ") + commits.DefaultDisplayTitleLength
		if len(got) != wantLen {
			t.Errorf("FormattedForDisplay() length = %d, want %d", len(got), wantLen)
		}
	})
}
