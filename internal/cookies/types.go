// Package cookies models the cookie set that represents a logged-in
// studio session. It persists sets as JSON, exports them in the Netscape
// text format, and imports them from Chrome or Firefox cookie databases.
//
// Cookie values are credentials. They are never logged or put in error
// messages; only Name and Domain may appear in diagnostics.
package cookies

import (
	"strings"
	"time"
)

// Cookie is one captured browser cookie. Expiry is in unix seconds, zero
// for a session cookie. The JSON shape mirrors what a browser driver
// returns when asked for its cookies.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expiry   int64  `json:"expiry,omitempty"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
	SameSite string `json:"sameSite,omitempty"`
}

// IsSession reports whether c lives only for the browser session.
func (c Cookie) IsSession() bool {
	return c.Expiry <= 0
}

// Expired reports whether c has an explicit expiry before now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.IsSession() && time.Unix(c.Expiry, 0).Before(now)
}

// Set is an ordered cookie collection. Order is preserved on save and load
// and duplicates are kept.
type Set []Cookie

// Names lists cookie names in order, for logging.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Domains returns the distinct cookie domains in first-seen order.
func (s Set) Domains() []string {
	seen := make(map[string]struct{}, len(s))
	var out []string
	for _, c := range s {
		if _, ok := seen[c.Domain]; ok {
			continue
		}
		seen[c.Domain] = struct{}{}
		out = append(out, c.Domain)
	}
	return out
}

// Filter keeps the cookies belonging to any of domains (exact, leading dot
// or subdomain match).
func (s Set) Filter(domains ...string) Set {
	if len(domains) == 0 {
		return s
	}
	var out Set
	for _, c := range s {
		if MatchesAny(c.Domain, domains) {
			out = append(out, c)
		}
	}
	return out
}

// MatchesAny reports whether cookieDomain belongs to one of domains.
func MatchesAny(cookieDomain string, domains []string) bool {
	for _, d := range domains {
		if matchesDomain(cookieDomain, d) {
			return true
		}
	}
	return false
}

func matchesDomain(cookieDomain, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	dotDomain := "." + domain
	return cookieDomain == domain || cookieDomain == dotDomain || strings.HasSuffix(cookieDomain, dotDomain)
}

// Format identifies a cookie store on disk.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	// FormatChrome stores values encrypted on most systems; only rows with
	// a plaintext value column are usable.
	FormatChrome
	FormatNetscape
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "Firefox"
	case FormatChrome:
		return "Chrome"
	case FormatNetscape:
		return "Netscape"
	case FormatJSON:
		return "JSON"
	default:
		return "unknown"
	}
}

// Source describes where an imported set came from.
type Source struct {
	Path    string
	Format  Format
	// Browser is set when the store was found by browser discovery.
	Browser string
}

// DefaultDomains are the domains whose cookies carry a studio login.
var DefaultDomains = []string{"youtube.com", "google.com"}
