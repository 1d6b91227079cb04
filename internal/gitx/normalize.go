package gitx

import (
	"net/url"
	"strings"
)

// NormalizeURL converts a git remote URL into a canonical comparison key.
//
// Rules:
//   - Strip trailing slashes and ".git" suffixes
//   - Convert git@host:path shorthand to https://host/path
//   - Convert ssh://, git:// and git+ssh:// URLs to https://, dropping user and port
//   - Lowercase the result
//
// NormalizeURL is idempotent.
//
// Examples:
//
//	git@github.com:Org/Repo.git      → https://github.com/org/repo
//	https://github.com/Org/Repo.git/ → https://github.com/org/repo
func NormalizeURL(rawURL string) string {
	u := trimRemoteSuffixes(strings.TrimSpace(rawURL))
	if u == "" {
		return ""
	}

	if host, path, ok := splitSCPLike(u); ok {
		u = "https://" + host + "/" + path
	} else if strings.Contains(u, "://") {
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			scheme := strings.ToLower(parsed.Scheme)
			switch scheme {
			case "ssh", "git", "git+ssh", "ssh+git":
				scheme = "https"
			}
			host := parsed.Hostname()
			if scheme == "https" || scheme == "http" {
				// Ports only survive on remotes that were already http(s).
				if port := parsed.Port(); port != "" && scheme == strings.ToLower(parsed.Scheme) {
					host += ":" + port
				}
			}
			u = scheme + "://" + host + "/" + strings.TrimPrefix(parsed.EscapedPath(), "/")
		}
	}

	return strings.ToLower(trimRemoteSuffixes(u))
}

// splitSCPLike recognizes user@host:path. A slash before the colon means a
// local path rather than a host.
func splitSCPLike(u string) (string, string, bool) {
	if strings.Contains(u, "://") {
		return "", "", false
	}
	at := strings.Index(u, "@")
	if at < 0 {
		return "", "", false
	}
	rest := u[at+1:]
	colon := strings.Index(rest, ":")
	if colon <= 0 || strings.Contains(rest[:colon], "/") {
		return "", "", false
	}
	return rest[:colon], strings.TrimPrefix(rest[colon+1:], "/"), true
}

func trimRemoteSuffixes(u string) string {
	for {
		trimmed := strings.TrimRight(u, "/")
		trimmed = strings.TrimSuffix(trimmed, ".git")
		if trimmed == u {
			return u
		}
		u = trimmed
	}
}
