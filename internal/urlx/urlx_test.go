package urlx

import "testing"

// TestNormalizeHost verifies port stripping, lowercasing, and www removal.
func TestNormalizeHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "plain host", host: "example.com", want: "example.com"},
		{name: "strips port", host: "example.com:8080", want: "example.com"},
		{name: "lowercases", host: "Example.COM", want: "example.com"},
		{name: "strips www", host: "www.example.com", want: "example.com"},
		{name: "strips www and port", host: "WWW.Example.com:443", want: "example.com"},
		{name: "keeps inner www", host: "wwwexample.com", want: "wwwexample.com"},
		{name: "empty host", host: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeHost(tt.host); got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

// TestSameSite verifies the subdomain-aware same-site test.
func TestSameSite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawURL   string
		baseHost string
		want     bool
	}{
		{name: "same host", rawURL: "http://example.com/p", baseHost: "example.com", want: true},
		{name: "subdomain of base", rawURL: "http://blog.example.com/p", baseHost: "example.com", want: true},
		{name: "base is subdomain of link host", rawURL: "http://example.com/p", baseHost: "blog.example.com", want: true},
		{name: "www variants match", rawURL: "http://www.example.com/p", baseHost: "example.com", want: true},
		{name: "different site", rawURL: "http://evil.com/p", baseHost: "example.com", want: false},
		{name: "suffix but not dot-suffix", rawURL: "http://notexample.com/p", baseHost: "example.com", want: false},
		{name: "empty base host", rawURL: "http://example.com/p", baseHost: "", want: false},
		{name: "relative URL has no host", rawURL: "/path/only", baseHost: "example.com", want: false},
		{name: "unparsable URL", rawURL: "http://exa mple.com/", baseHost: "example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SameSite(tt.rawURL, tt.baseHost); got != tt.want {
				t.Errorf("SameSite(%q, %q) = %v, want %v", tt.rawURL, tt.baseHost, got, tt.want)
			}
		})
	}
}
