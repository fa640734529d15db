package template

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// whichCacheSize bounds the locator's internal LRU.
const whichCacheSize = 64

// WhichLocator resolves commands against a captured snapshot of PATH,
// grounded on registry.Cache's revalidate-on-read pattern generalised into
// an in-memory bounded cache keyed by cwd mode and command name.
type WhichLocator struct {
	mu    sync.Mutex
	cache map[string][]string
	order []string
}

// NewWhichLocator creates an empty locator.
func NewWhichLocator() *WhichLocator {
	return &WhichLocator{cache: make(map[string][]string)}
}

func (w *WhichLocator) get(command string) ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.cache[command]
	if ok {
		for i, k := range w.order {
			if k == command {
				w.order = append(w.order[:i], w.order[i+1:]...)
				w.order = append(w.order, command)
				break
			}
		}
	}
	return v, ok
}

func (w *WhichLocator) put(command string, matches []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.cache[command]; !exists {
		w.order = append(w.order, command)
		if len(w.order) > whichCacheSize {
			evict := w.order[0]
			w.order = w.order[1:]
			delete(w.cache, evict)
		}
	}
	w.cache[command] = matches
}

// registerWhichHelper wires which(command, all=false, canonical=false,
// fresh=false, cwd_mode="auto").
func (r *Registry) registerWhichHelper(h map[string]HelperFunc) {
	h["which"] = func(env *Env, args []any) (any, error) {
		command, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		all := argBoolOr(args, 1, false)
		canonical := argBoolOr(args, 2, false)
		fresh := argBoolOr(args, 3, false)
		cwdMode := argStringOr(args, 4, "auto")

		env.MarkImpure()
		matches := r.resolveWhich(command, fresh, cwdMode)
		if canonical {
			matches = canonicaliseAndDedup(matches)
		}
		if len(matches) == 0 {
			if all {
				return []any{}, nil
			}
			return nil, nil
		}
		if all {
			out := make([]any, len(matches))
			for i, m := range matches {
				out[i] = m
			}
			return out, nil
		}
		return matches[0], nil
	}
}

func (r *Registry) resolveWhich(command string, fresh bool, cwdMode string) []string {
	if !fresh {
		if cached, ok := r.Which.get(cacheKeyFor(command, cwdMode)); ok {
			return cached
		}
	}
	matches := searchPath(command, cwdMode)
	r.Which.put(cacheKeyFor(command, cwdMode), matches)
	return matches
}

func cacheKeyFor(command, cwdMode string) string { return cwdMode + "\x00" + command }

// searchPath walks a captured PATH snapshot (and PATHEXT on Windows),
// returning every match in PATH order. Empty PATH segments map to the
// current directory under "auto". When PATH is entirely empty, no directory
// is searched except "." under cwdMode "always"; neither this function nor
// the which helper performs a workspace fallback walk.
func searchPath(command string, cwdMode string) []string {
	pathEnv := os.Getenv("PATH")
	var segments []string
	if pathEnv != "" {
		segments = strings.Split(pathEnv, string(os.PathListSeparator))
	}
	if cwdMode == "always" {
		segments = append([]string{"."}, segments...)
	}

	exts := []string{""}
	if runtime.GOOS == "windows" {
		if pathext := os.Getenv("PATHEXT"); pathext != "" {
			exts = strings.Split(pathext, ";")
		} else {
			exts = []string{".exe", ".bat", ".cmd"}
		}
	}

	var matches []string
	for _, seg := range segments {
		dir := seg
		if dir == "" {
			if cwdMode == "never" {
				continue
			}
			dir = "."
		}
		for _, ext := range exts {
			candidate := filepath.Join(dir, command+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				matches = append(matches, candidate)
			}
		}
	}
	return matches
}

func canonicaliseAndDedup(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		resolved, err := filepath.EvalSymlinks(m)
		if err != nil {
			resolved = m
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}
