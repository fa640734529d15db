package hostpattern

import (
	"net/url"

	"github.com/leynos/netsuke-go/internal/errs"
)

// AllowAny is a sentinel allow-list meaning "no allowlist restriction".
var AllowAny []Pattern = nil

// Policy is the triple (allowed_schemes, allowed_hosts, blocked_hosts) that
// gates the `fetch` template helper.
type Policy struct {
	AllowedSchemes map[string]struct{}
	AllowedHosts   []Pattern // nil means AllowAny; empty non-nil means deny-all
	BlockedHosts   []Pattern
	restrictive    bool // distinguishes nil-as-ANY from an explicit empty allow-list
}

// DefaultPolicy returns the built-in default: schemes = {https}, allow-list =
// ANY, block-list empty.
func DefaultPolicy() Policy {
	return Policy{
		AllowedSchemes: map[string]struct{}{"https": {}},
	}
}

// DenyAllHosts sets the allow-list to the empty list (restrictive), forcing
// explicit allowlisting of every host.
func (p Policy) DenyAllHosts() Policy {
	p.AllowedHosts = []Pattern{}
	p.restrictive = true
	return p
}

// AllowHost appends a host pattern to the allow-list, making it restrictive.
func (p Policy) AllowHost(pat Pattern) Policy {
	p.AllowedHosts = append(p.AllowedHosts, pat)
	p.restrictive = true
	return p
}

// BlockHost appends a host pattern to the block-list.
func (p Policy) BlockHost(pat Pattern) Policy {
	p.BlockedHosts = append(p.BlockedHosts, pat)
	return p
}

// Evaluate checks u against the policy, in precedence order: missing
// host, scheme, blocklist, allowlist.
func (p Policy) Evaluate(u *url.URL) error {
	host := u.Hostname()
	if host == "" {
		return errs.New(errs.KindNetworkMissingHost, "URL has no host").WithDetail("url", u.String())
	}
	if _, ok := p.AllowedSchemes[u.Scheme]; !ok {
		return errs.New(errs.KindNetworkSchemeNotAllowed, "URL scheme is not allowed").
			WithDetail("scheme", u.Scheme)
	}
	for _, blocked := range p.BlockedHosts {
		if blocked.Matches(host) {
			return errs.New(errs.KindNetworkHostBlocked, "host is blocked by policy").
				WithDetail("host", host)
		}
	}
	if p.restrictive {
		matched := false
		for _, allowed := range p.AllowedHosts {
			if allowed.Matches(host) {
				matched = true
				break
			}
		}
		if !matched {
			return errs.New(errs.KindNetworkHostNotAllowed, "host is not in the allowlist").
				WithDetail("host", host)
		}
	}
	return nil
}

// EvaluateURL parses rawURL and evaluates it against the policy, satisfying
// the template package's NetworkPolicy interface (which is expressed as a
// plain string -> error method so that package need not import net/url's
// caller-facing URL type or this package).
func (p Policy) EvaluateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errs.New(errs.KindNetworkMissingHost, "fetch: invalid URL").WithDetail("url", rawURL).WithCause(err)
	}
	return p.Evaluate(u)
}
