// Package domains canonicalizes user-supplied domain strings to a bare host.
// The canonical form is the comparison and cache key for every keyword-set
// fetch, so two inputs denoting the same host must normalize identically.
package domains

import "strings"

// Normalize reduces a URL or domain string to a comparable bare host.
// It lower-cases, strips an http/https scheme, a leading "www.", and
// anything after the host. Normalize is total and idempotent.
func Normalize(input string) string {
	host := strings.ToLower(strings.TrimSpace(input))

	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "www.")

	// Drop path, query and fragment, whichever comes first.
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	// A stray port is not part of the host identity.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	return host
}
