// Package urlutil extracts repository paths from git remote URLs.
//
// Remotes come in three shapes:
//
//	https://gitlab.com/group/project
//	ssh://git@gitlab.com/group/project
//	git@gitlab.com:group/project
//
// Callers trim the .git suffix before asking for components.
package urlutil

import "strings"

// PathTail returns the last n slash-separated components of a git remote
// URL, joined with "/". The scp-like git@host:path form carries the whole
// project path after the colon, so n is ignored for it. Returns "" when
// the URL splits into fewer than n parts, or when an scp-like URL has no
// colon.
func PathTail(url string, n int) string {
	if strings.HasPrefix(url, "git@") {
		i := strings.LastIndex(url, ":")
		if i < 0 {
			return ""
		}
		return url[i+1:]
	}

	// https:// and ssh:// parse the same way, the scheme and host simply
	// occupy the leading slash-separated parts.
	parts := strings.Split(url, "/")
	if len(parts) < n {
		return ""
	}
	return strings.Join(parts[len(parts)-n:], "/")
}
