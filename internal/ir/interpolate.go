package ir

import (
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/quoting"
)

// InterpolateCommand expands $in/$out placeholders in a command template
// with the space-joined, POSIX-shell-quoted input and output lists of the
// enclosing edge. A placeholder fires only when the preceding and following
// characters are absent or non-identifier, and it is not inside a
// backtick-delimited region; backtick-delimited text is passed through
// untouched.
//
// Quoting is always the POSIX-sh algorithm regardless of host platform: the
// command template itself is a POSIX-sh fragment (ninja always shells out
// via sh -c/cmd /C using its own platform quoting for the outer invocation,
// but $in/$out substitution happens before that and must produce a single,
// unambiguous token stream).
func InterpolateCommand(command string, inputs, outputs []string) (string, error) {
	in := quoteJoin(inputs)
	out := quoteJoin(outputs)

	var b strings.Builder
	inBacktick := false
	backtickCount := 0
	i := 0
	for i < len(command) {
		c := command[i]
		if c == '`' {
			backtickCount++
			inBacktick = !inBacktick
			b.WriteByte(c)
			i++
			continue
		}
		if !inBacktick && c == '$' {
			if name, width, ok := matchPlaceholder(command, i); ok {
				prevOK := i == 0 || !isIdentChar(command[i-1])
				nextOK := i+width >= len(command) || !isIdentChar(command[i+width])
				if prevOK && nextOK {
					if name == "in" {
						b.WriteString(in)
					} else {
						b.WriteString(out)
					}
					i += width
					continue
				}
			}
		}
		b.WriteByte(c)
		i++
	}

	if inBacktick || backtickCount%2 != 0 {
		return "", errs.New(errs.KindInvalidCommand, "command has unbalanced backticks").
			WithDetail("command", command)
	}
	result := b.String()
	if err := validateTokenStream(result); err != nil {
		return "", err
	}
	return result, nil
}

// matchPlaceholder reports whether command[pos:] begins with "$in" or
// "$out" and returns the identifier name and the total width consumed
// (including the leading '$').
func matchPlaceholder(command string, pos int) (name string, width int, ok bool) {
	rest := command[pos+1:]
	switch {
	case strings.HasPrefix(rest, "in"):
		return "in", len("$in"), true
	case strings.HasPrefix(rest, "out"):
		return "out", len("$out"), true
	default:
		return "", 0, false
	}
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func quoteJoin(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = quoting.POSIX(p)
	}
	return strings.Join(quoted, " ")
}

// validateTokenStream performs a minimal shell-lexical sanity check: quotes
// must be balanced and the command must not be empty after interpolation.
// Full shell-grammar validation is out of scope; this catches
// interpolation-introduced breakage such as unbalanced quotes from a
// pathological path or an empty command after substitution.
func validateTokenStream(command string) error {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return errs.New(errs.KindInvalidCommand, "command is empty after interpolation")
	}
	inSingle, inDouble := false, false
	for i := 0; i < len(command); i++ {
		switch command[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		}
	}
	if inSingle || inDouble {
		return errs.New(errs.KindInvalidCommand, "command has unbalanced quotes").
			WithDetail("command", command)
	}
	return nil
}
