// Package hostpattern parses, normalises, and matches DNS-style host
// specifiers used by the network policy and consumed by the CLI.
package hostpattern

import (
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
)

// Pattern is a normalised DNS host specifier: a lowercased host body plus a
// flag recording whether the original text carried a leading "*." wildcard.
type Pattern struct {
	body     string
	wildcard bool
}

// Parse validates and normalises a host pattern string.
func Parse(pattern string) (Pattern, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return Pattern{}, errs.New(errs.KindHostPatternEmpty, "host pattern must not be empty")
	}
	if strings.Contains(trimmed, "://") {
		return Pattern{}, errs.New(errs.KindHostPatternScheme, "host pattern must not include a scheme").
			WithDetail("pattern", trimmed)
	}
	if strings.Contains(trimmed, "/") {
		return Pattern{}, errs.New(errs.KindHostPatternSlash, "host pattern must not contain '/'").
			WithDetail("pattern", trimmed)
	}

	wildcard := false
	body := trimmed
	if suffix, ok := strings.CutPrefix(trimmed, "*."); ok {
		if suffix == "" {
			return Pattern{}, errs.New(errs.KindHostPatternNoSuffix, "wildcard host pattern must include a suffix").
				WithDetail("pattern", trimmed)
		}
		wildcard = true
		body = suffix
	}

	normalised := strings.ToLower(body)
	labels := strings.Split(normalised, ".")
	total := 0
	for i, label := range labels {
		if err := validateLabel(label, trimmed); err != nil {
			return Pattern{}, err
		}
		total += len(label)
		if i > 0 {
			total++
		}
	}
	if total > 255 {
		return Pattern{}, errs.New(errs.KindHostPatternTooLong, "host pattern must not exceed 255 characters in total").
			WithDetail("pattern", trimmed)
	}

	return Pattern{body: normalised, wildcard: wildcard}, nil
}

func validateLabel(label, original string) error {
	if label == "" {
		return errs.New(errs.KindHostPatternEmptyLabel, "host pattern must not contain empty labels").
			WithDetail("pattern", original)
	}
	for _, c := range label {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '-' {
			return errs.New(errs.KindHostPatternInvalidChar, "host pattern contains invalid characters").
				WithDetail("pattern", original)
		}
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return errs.New(errs.KindHostPatternLabelEdge, "host pattern must not start or end labels with '-'").
			WithDetail("pattern", original)
	}
	if len(label) > 63 {
		return errs.New(errs.KindHostPatternLabelTooLong, "host pattern must not contain labels longer than 63 characters").
			WithDetail("pattern", original)
	}
	return nil
}

// Wildcard reports whether the pattern carried a leading "*." prefix.
func (p Pattern) Wildcard() bool { return p.wildcard }

// Body returns the lowercased host body (without any wildcard prefix).
func (p Pattern) Body() string { return p.body }

// String renders the pattern back to its canonical textual form.
func (p Pattern) String() string {
	if p.wildcard {
		return "*." + p.body
	}
	return p.body
}

// Matches reports whether candidate (a bare host, no scheme) satisfies this
// pattern. An exact pattern matches only the identical lowercased host; a
// wildcard pattern matches any host whose suffix equals the pattern body and
// whose prefix is non-empty and ends at a label boundary.
func (p Pattern) Matches(candidate string) bool {
	host := strings.ToLower(candidate)
	if !p.wildcard {
		return host == p.body
	}
	prefix, ok := strings.CutSuffix(host, p.body)
	if !ok {
		return false
	}
	prefix, ok = strings.CutSuffix(prefix, ".")
	return ok && prefix != ""
}
