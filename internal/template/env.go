// Package template evaluates the manifest's embedded expression language:
// dotted-path references, indexing, comparisons, boolean connectives, and
// calls into the standard library of helpers (see stdlib*.go). It also
// expands `foreach`/`when` mapping nodes before the manifest's typed decode
// runs.
package template

import (
	"fmt"
	"strings"
)

// HelperFunc is a registered template helper. args are already-evaluated
// expression values. impure helpers report so via the *Env they were called
// with (env.MarkImpure()) rather than a return value, matching how render
// caching needs to know regardless of whether the call succeeded.
type HelperFunc func(env *Env, args []any) (any, error)

// Env is the evaluation environment threaded through expression evaluation
// and foreach/when expansion: variables, builtins, and helper functions
// available to an expression, plus an impure-render flag helpers can set.
type Env struct {
	Variables map[string]any
	Builtins  map[string]any
	Helpers   map[string]HelperFunc

	impure bool
}

// NewEnv creates an empty Env sharing the given helper registry (helpers are
// immutable for the lifetime of a pipeline run, so they are not cloned).
func NewEnv(helpers map[string]HelperFunc) *Env {
	return &Env{
		Variables: make(map[string]any),
		Builtins:  make(map[string]any),
		Helpers:   helpers,
	}
}

// Clone returns a deep-enough copy of the environment for one foreach
// iteration: Variables and Builtins are copied so that writes in one
// iteration (item/index injection, helper side effects recorded in
// Variables) never leak into sibling iterations. Helpers are shared, and the
// impure flag is reset - impurity is tracked per render, not per clone.
func (e *Env) Clone() *Env {
	clone := &Env{
		Variables: make(map[string]any, len(e.Variables)),
		Builtins:  make(map[string]any, len(e.Builtins)),
		Helpers:   e.Helpers,
	}
	for k, v := range e.Variables {
		clone.Variables[k] = v
	}
	for k, v := range e.Builtins {
		clone.Builtins[k] = v
	}
	return clone
}

// Set assigns a user-visible variable.
func (e *Env) Set(name string, value any) { e.Variables[name] = value }

// SetBuiltin assigns a builtin, consulted only after Variables misses.
func (e *Env) SetBuiltin(name string, value any) { e.Builtins[name] = value }

// MarkImpure records that evaluation touched something impure (filesystem,
// network, subprocess, wall-clock) so the caller can invalidate any render
// cache for this expression.
func (e *Env) MarkImpure() { e.impure = true }

// Impure reports whether MarkImpure was called during the current render.
func (e *Env) Impure() bool { return e.impure }

// ResetImpure clears the impure flag before a fresh render.
func (e *Env) ResetImpure() { e.impure = false }

// lookup resolves a bare identifier against Variables then Builtins.
func (e *Env) lookup(name string) (any, bool) {
	if v, ok := e.Variables[name]; ok {
		return v, true
	}
	if v, ok := e.Builtins[name]; ok {
		return v, true
	}
	return nil, false
}

// Stringify renders a value as interpolated text: scalars use fmt,
// maps/slices use JSON so structured values never render as Go's
// "map[foo:bar]".
func Stringify(val any) string {
	return stringify(val)
}

func stringify(val any) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return jsonOrSprint(val)
}

// identPart reports whether r is a valid character inside a bare identifier
// (used by the lexer and by the dotted-path splitter).
func identPart(r byte) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func splitDotted(path string) []string {
	return strings.Split(path, ".")
}
