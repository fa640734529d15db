package template

import (
	"fmt"
	"regexp"
	"strings"
)

// exprPattern matches {{ expression }} fragments embedded in free-form
// manifest string fields.
var exprPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// maxSubstituteDepth bounds re-substitution passes, guarding against
// runaway recursive expansion.
const maxSubstituteDepth = 10

// Substitute renders every {{ expr }} fragment in input against env and
// always returns a string: each value is stringified, structured values as
// JSON. SubstituteValue is the variant that returns the native value when
// the whole input is a single fragment.
func Substitute(env *Env, input string) (string, error) {
	result := input
	for i := 0; i < maxSubstituteDepth; i++ {
		var evalErr error
		next := exprPattern.ReplaceAllStringFunc(result, func(match string) string {
			expr := strings.TrimSpace(match[2 : len(match)-2])
			val, err := Eval(env, expr)
			if err != nil {
				evalErr = fmt.Errorf("evaluating %q: %w", expr, err)
				return match
			}
			return Stringify(val)
		})
		if evalErr != nil {
			return "", evalErr
		}
		if next == result {
			break
		}
		result = next
	}
	return result, nil
}

// SubstituteValue behaves like Substitute but returns the native value of
// input when input, once trimmed, is exactly one {{ expr }} fragment -
// otherwise it falls back to string substitution.
func SubstituteValue(env *Env, input string) (any, error) {
	trimmed := strings.TrimSpace(input)
	if m := exprPattern.FindStringSubmatch(trimmed); m != nil && m[0] == trimmed {
		return Eval(env, strings.TrimSpace(m[1]))
	}
	return Substitute(env, input)
}

// Eval parses and evaluates a single expression string against env.
func Eval(env *Env, expr string) (any, error) {
	n, err := parseExpr(expr)
	if err != nil {
		return nil, err
	}
	return n.eval(env)
}
