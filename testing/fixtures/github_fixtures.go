// Package fixtures provides common test data structures for testing.
package fixtures

import (
	"time"

	"github.com/google/go-github/v69/github"
)

// Test constants for GitHub fixtures.
const (
	defaultPRNumber = 123
)

// GitHub fixtures for common test scenarios

// CleanPullRequest returns an open GitHub pull request that the server
// reports as clean to merge.
func CleanPullRequest() *github.PullRequest {
	return &github.PullRequest{
		Number:         github.Ptr(defaultPRNumber),
		Title:          github.Ptr("Add merge eligibility panel"),
		State:          github.Ptr("open"),
		MergeableState: github.Ptr("clean"),
		Head:           &github.PullRequestBranch{Ref: github.Ptr("feature-branch"), SHA: github.Ptr("abc123def456")},
		Base:           &github.PullRequestBranch{Ref: github.Ptr("main")},
		User:           &github.User{Login: github.Ptr("testuser")},
		HTMLURL:        github.Ptr("https://github.com/acme/widgets/pull/123"),
	}
}

// BlockedGitHubPullRequest returns an open pull request blocked by the given
// mergeable state.
func BlockedGitHubPullRequest(mergeableState string) *github.PullRequest {
	pr := CleanPullRequest()
	pr.MergeableState = github.Ptr(mergeableState)
	return pr
}

// DraftGitHubPullRequest returns an open draft pull request.
func DraftGitHubPullRequest() *github.PullRequest {
	pr := BlockedGitHubPullRequest("draft")
	pr.Title = github.Ptr("Draft PR")
	pr.Draft = github.Ptr(true)
	return pr
}

// ClosedGitHubPullRequest returns a closed pull request.
func ClosedGitHubPullRequest() *github.PullRequest {
	pr := CleanPullRequest()
	pr.State = github.Ptr("closed")
	return pr
}

// MergedGitHubPullRequest returns a merged pull request.
func MergedGitHubPullRequest() *github.PullRequest {
	pr := CleanPullRequest()
	pr.State = github.Ptr("closed")
	pr.Merged = github.Ptr(true)
	pr.MergedAt = &github.Timestamp{Time: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)}
	pr.MergedBy = &github.User{Login: github.Ptr("testuser")}
	return pr
}

// SuccessfulMergeResult returns a successful merge result.
func SuccessfulMergeResult() *github.PullRequestMergeResult {
	return &github.PullRequestMergeResult{
		SHA:     github.Ptr("def789abc012"),
		Merged:  github.Ptr(true),
		Message: github.Ptr("Pull Request successfully merged"),
	}
}
