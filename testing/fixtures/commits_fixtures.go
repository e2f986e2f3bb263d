package fixtures

import (
	"time"

	"github.com/mergegate/mergegate/pkg/commits"
)

// commitAuthor is stamped on every commit fixture.
const commitAuthor = "Dev Example <dev@example.com>"

// commitDay anchors fixture timestamps so tests are reproducible.
var commitDay = time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)

// SingleCommit returns one valid commit.
func SingleCommit() []commits.Commit {
	return []commits.Commit{
		{
			Hash:         "a3f81b2c9d04e5f6a7b8c9d0e1f2a3b4c5d6e7f8",
			ShortHash:    "a3f81b2",
			Message:      "feat: add merge panel",
			Title:        "feat: add merge panel",
			Author:       commitAuthor,
			Timestamp:    commitDay,
			ParentHashes: []string{"9081726354453627180900112233445566778899"},
		},
	}
}

// MultipleCommits returns three valid commits ordered newest first, the
// order a branch walk produces. Each commit's parent is the next entry.
func MultipleCommits() []commits.Commit {
	return []commits.Commit{
		{
			Hash:         "b4c92d3e0a15f6a7b8c9d0e1f2a3b4c5d6e7f809",
			ShortHash:    "b4c92d3",
			Message:      "fix: debounce refresh on watch",
			Title:        "fix: debounce refresh on watch",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(3 * time.Hour),
			ParentHashes: []string{"c5d03e4f1b26a7b8c9d0e1f2a3b4c5d6e7f80910"},
		},
		{
			Hash:         "c5d03e4f1b26a7b8c9d0e1f2a3b4c5d6e7f80910",
			ShortHash:    "c5d03e4",
			Message:      "feat: add squash message preview",
			Title:        "feat: add squash message preview",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(2 * time.Hour),
			ParentHashes: []string{"d6e14f5a2c37b8c9d0e1f2a3b4c5d6e7f8091021"},
		},
		{
			Hash:         "d6e14f5a2c37b8c9d0e1f2a3b4c5d6e7f8091021",
			ShortHash:    "d6e14f5",
			Message:      "feat: initial merge panel",
			Title:        "feat: initial merge panel",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(time.Hour),
			ParentHashes: []string{"e7f25a6b3d48c9d0e1f2a3b4c5d6e7f809102132"},
		},
	}
}

// CommitsWithMerges returns a branch walk whose middle commit is a merge
// commit.
func CommitsWithMerges() []commits.Commit {
	return []commits.Commit{
		{
			Hash:         "e7f25a6b3d48c9d0e1f2a3b4c5d6e7f809102132",
			ShortHash:    "e7f25a6",
			Message:      "fix: keep selection on refresh",
			Title:        "fix: keep selection on refresh",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(3 * time.Hour),
			ParentHashes: []string{"f8036b7c4e59d0e1f2a3b4c5d6e7f80910213243"},
		},
		{
			Hash:      "f8036b7c4e59d0e1f2a3b4c5d6e7f80910213243",
			ShortHash: "f8036b7",
			Message:   "Merge branch 'main' into feature/panel",
			Title:     "Merge branch 'main' into feature/panel",
			Author:    commitAuthor,
			Timestamp: commitDay.Add(2 * time.Hour),
			// Two parents mark the merge.
			ParentHashes: []string{
				"a3f81b2c9d04e5f6a7b8c9d0e1f2a3b4c5d6e7f8",
				"0192837465564738291001122334455667788990",
			},
		},
		{
			Hash:         "a3f81b2c9d04e5f6a7b8c9d0e1f2a3b4c5d6e7f8",
			ShortHash:    "a3f81b2",
			Message:      "feat: add strategy picker",
			Title:        "feat: add strategy picker",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(time.Hour),
			ParentHashes: []string{"9081726354453627180900112233445566778899"},
		},
	}
}

// CommitsWithEmptyMessages returns commits whose messages are empty or
// whitespace only.
func CommitsWithEmptyMessages() []commits.Commit {
	return []commits.Commit{
		{
			Hash:         "0192837465564738291001122334455667788990",
			ShortHash:    "0192837",
			Message:      "",
			Title:        "",
			Author:       commitAuthor,
			Timestamp:    commitDay,
			ParentHashes: []string{"9081726354453627180900112233445566778899"},
		},
		{
			Hash:         "1203948576675849302112233445566778899001",
			ShortHash:    "1203948",
			Message:      "   ",
			Title:        "   ",
			Author:       commitAuthor,
			Timestamp:    commitDay.Add(time.Hour),
			ParentHashes: []string{"0192837465564738291001122334455667788990"},
		},
	}
}
