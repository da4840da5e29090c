package urlx

import (
	"net/url"
	"strings"
)

// NormalizeHost canonicalizes a host for same-site comparison: the port is
// stripped, the host is lowercased, and a leading "www." label is removed.
func NormalizeHost(host string) string {
	host = strings.ToLower(host)
	// Strip the port if present. We split manually instead of using
	// net.SplitHostPort because the latter errors on hosts without a port.
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// SameSite reports whether rawURL belongs to the site identified by
// baseHost. Both sides are normalized; hosts are considered the same site
// when they are equal or when one is a dot-suffix of the other, which
// covers subdomains in either direction.
//
// SameSite never panics and returns false on any parse failure or empty
// host: a link we cannot attribute to a site must not be followed.
func SameSite(rawURL, baseHost string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	h1 := NormalizeHost(u.Host)
	h2 := NormalizeHost(baseHost)
	if h1 == "" || h2 == "" {
		return false
	}

	return h1 == h2 || strings.HasSuffix(h1, "."+h2) || strings.HasSuffix(h2, "."+h1)
}
