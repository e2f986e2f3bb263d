package urlutil_test

import (
	"testing"

	"github.com/mergegate/mergegate/internal/urlutil"
)

func TestPathTail(t *testing.T) {
	tests := []struct {
		name string
		url  string
		n    int
		want string
	}{
		// HTTPS remotes (.git already trimmed by the caller)
		{name: "github_https", url: "https://github.com/owner/repo", n: 2, want: "owner/repo"},
		{name: "github_https_www", url: "https://www.github.com/owner/repo", n: 2, want: "owner/repo"},
		{name: "gitlab_https", url: "https://gitlab.com/group/project", n: 2, want: "group/project"},
		{name: "gitlab_https_subgroup", url: "https://gitlab.com/group/subgroup/project", n: 3, want: "group/subgroup/project"},
		{name: "gitlab_https_subgroup_tail", url: "https://gitlab.com/group/subgroup/project", n: 2, want: "subgroup/project"},
		{name: "gitlab_https_deep_nesting", url: "https://gitlab.com/group/sub1/sub2/project", n: 4, want: "group/sub1/sub2/project"},
		{name: "custom_domain_https", url: "https://git.company.com/team/project", n: 2, want: "team/project"},

		// ssh:// remotes parse like HTTPS
		{name: "github_ssh_protocol", url: "ssh://git@github.com/owner/repo", n: 2, want: "owner/repo"},
		{name: "gitlab_ssh_protocol_subgroup", url: "ssh://git@gitlab.com/group/subgroup/project", n: 3, want: "group/subgroup/project"},

		// scp-like remotes return the whole path after the colon
		{name: "github_scp", url: "git@github.com:owner/repo", n: 2, want: "owner/repo"},
		{name: "gitlab_scp_subgroup", url: "git@gitlab.com:group/subgroup/project", n: 3, want: "group/subgroup/project"},
		{name: "scp_ignores_count", url: "git@gitlab.com:group/subgroup/project", n: 1, want: "group/subgroup/project"},
		{name: "custom_domain_scp", url: "git@git.company.com:team/project", n: 2, want: "team/project"},

		// Repository names keep punctuation as-is
		{name: "hyphens_and_dots", url: "https://github.com/my-org/my.repo", n: 2, want: "my-org/my.repo"},
		{name: "underscores", url: "git@github.com:my_org/my_repo", n: 2, want: "my_org/my_repo"},

		// Not enough components
		{name: "https_short_path", url: "https://github.com/single", n: 2, want: "github.com/single"},
		{name: "scp_short_path", url: "git@github.com:single", n: 2, want: "single"},
		{name: "count_exceeds_parts", url: "ssh://git@github.com/single", n: 10, want: ""},
		{name: "scp_missing_colon", url: "git@github.com", n: 2, want: ""},
		{name: "empty_url", url: "", n: 2, want: ""},
		{name: "bare_word", url: "not-a-url", n: 2, want: ""},

		// Count edge cases
		{name: "single_component", url: "https://github.com/owner/repo", n: 1, want: "repo"},
		{name: "count_equals_parts", url: "https://github.com/owner/repo", n: 5, want: "https://github.com/owner/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urlutil.PathTail(tt.url, tt.n); got != tt.want {
				t.Errorf("PathTail(%q, %d) = %q, want %q", tt.url, tt.n, got, tt.want)
			}
		})
	}
}

func TestPathTailFormatsAgree(t *testing.T) {
	// The three remote shapes of one project must resolve to the same path.
	tests := []struct {
		name string
		urls []string
		n    int
		want string
	}{
		{
			name: "github",
			urls: []string{
				"https://github.com/owner/repo",
				"ssh://git@github.com/owner/repo",
				"git@github.com:owner/repo",
			},
			n:    2,
			want: "owner/repo",
		},
		{
			name: "gitlab_subgroup",
			urls: []string{
				"https://gitlab.com/group/subgroup/project",
				"ssh://git@gitlab.com/group/subgroup/project",
				"git@gitlab.com:group/subgroup/project",
			},
			n:    3,
			want: "group/subgroup/project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, url := range tt.urls {
				if got := urlutil.PathTail(url, tt.n); got != tt.want {
					t.Errorf("PathTail(%q, %d) = %q, want %q", url, tt.n, got, tt.want)
				}
			}
		})
	}
}
