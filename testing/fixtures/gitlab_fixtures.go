// Package fixtures provides common test data structures for testing.
package fixtures

import (
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// Test constants for GitLab fixtures.
const (
	defaultMRIID = 123
)

// GitLab fixtures for common test scenarios

// MergeableMergeRequest returns an open GitLab merge request that the server
// reports as mergeable.
func MergeableMergeRequest() *gitlab.MergeRequest {
	return &gitlab.MergeRequest{
		BasicMergeRequest: gitlab.BasicMergeRequest{
			IID:                 defaultMRIID,
			Title:               "Test Merge Request",
			State:               "opened",
			SourceBranch:        "feature-branch",
			TargetBranch:        "main",
			SHA:                 "abc123def456",
			DetailedMergeStatus: "mergeable",
			Author: &gitlab.BasicUser{
				Username: "testuser",
			},
			WebURL: "https://gitlab.com/owner/project/-/merge_requests/123",
		},
	}
}

// BlockedMergeRequest returns an open merge request blocked by the given
// detailed merge status.
func BlockedMergeRequest(detailedStatus string) *gitlab.MergeRequest {
	mr := MergeableMergeRequest()
	mr.DetailedMergeStatus = detailedStatus
	return mr
}

// ConflictedMergeRequest returns an open merge request with conflicts.
func ConflictedMergeRequest() *gitlab.MergeRequest {
	mr := BlockedMergeRequest("conflict")
	mr.HasConflicts = true
	return mr
}

// DraftMergeRequest returns an open draft merge request.
func DraftMergeRequest() *gitlab.MergeRequest {
	mr := BlockedMergeRequest("draft_status")
	mr.Title = "Draft: " + mr.Title
	mr.Draft = true
	return mr
}

// ClosedMergeRequest returns a closed merge request.
func ClosedMergeRequest() *gitlab.MergeRequest {
	mr := MergeableMergeRequest()
	mr.State = "closed"
	mr.DetailedMergeStatus = "not_open"
	return mr
}

// MergedMergeRequest returns a merged merge request.
func MergedMergeRequest() *gitlab.MergeRequest {
	mr := MergeableMergeRequest()
	mr.State = "merged"
	mr.DetailedMergeStatus = "not_open"
	mergedAt := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	mr.MergedAt = &mergedAt
	mr.MergeUser = &gitlab.BasicUser{Username: "testuser"}
	return mr
}
