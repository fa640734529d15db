package template

import (
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
)

// registerGlobHelper wires `glob(pattern)`: a foreach source that expands to
// the sorted list of regular files matching a shell-style glob pattern.
// Matching never crosses a "/" boundary - `*` and `?` only match within one
// path segment - and is case-sensitive.
func (r *Registry) registerGlobHelper(h map[string]HelperFunc) {
	h["glob"] = func(env *Env, args []any) (any, error) {
		pattern, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if err := validateGlobBraces(pattern); err != nil {
			return nil, err
		}
		env.MarkImpure()
		matches, err := r.FS.glob(normalizeGlobSeparators(pattern))
		if err != nil {
			return nil, errs.New(errs.KindInvalidGlobPattern, "invalid glob pattern").
				WithDetail("pattern", pattern).
				WithCause(err)
		}
		out := make([]any, len(matches))
		for i, m := range matches {
			out[i] = m
		}
		return out, nil
	}
}

// normalizeGlobSeparators rewrites backslash path separators to the forward
// slashes glob matching expects, so a pattern authored with Windows-style
// paths still matches. A backslash immediately before a glob metacharacter
// is left alone rather than treated as a separator, since that is far more
// likely to be an attempted escape than a literal directory boundary.
func normalizeGlobSeparators(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\\' && i+1 < len(runes) && strings.ContainsRune(`*?[]{}`, runes[i+1]) {
			b.WriteRune(c)
			continue
		}
		if c == '\\' {
			b.WriteRune('/')
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// validateGlobBraces rejects a pattern with an unmatched '{' or '}', scanning
// left to right and tracking brace depth and character-class ('[...]')
// context so a brace inside a class is treated as a literal. A backslash
// escapes the character that follows it.
func validateGlobBraces(pattern string) error {
	depth := 0
	inClass := false
	escaped := false
	lastOpen := 0
	for i, ch := range pattern {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = true
		case ch == '[' && !inClass:
			inClass = true
		case ch == ']' && inClass:
			inClass = false
		case inClass:
		case ch == '{':
			depth++
			lastOpen = i
		case ch == '}' && depth == 0:
			return errs.New(errs.KindInvalidGlobPattern, "unmatched '}' in glob pattern").
				WithDetail("pattern", pattern).
				WithDetail("position", i)
		case ch == '}':
			depth--
		}
	}
	if depth != 0 {
		return errs.New(errs.KindInvalidGlobPattern, "unmatched '{' in glob pattern").
			WithDetail("pattern", pattern).
			WithDetail("position", lastOpen)
	}
	return nil
}
