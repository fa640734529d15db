package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// registerPathHelpers wires the path-manipulation helper group.
func (r *Registry) registerPathHelpers(h map[string]HelperFunc) {
	h["basename"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return filepath.Base(path), nil
	}
	h["dirname"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return filepath.Dir(path), nil
	}
	h["with_suffix"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		suffix, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		count := argIntOr(args, 2, 1)
		sep := argStringOr(args, 3, ".")
		return withSuffix(path, suffix, count, sep), nil
	}
	h["relative_to"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		root, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, fmt.Errorf("relative_to: %w", err)
		}
		return rel, nil
	}
	h["realpath"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		env.MarkImpure()
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, fmt.Errorf("realpath: %w", err)
		}
		return resolved, nil
	}
	h["expanduser"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return expandUser(path)
	}
}

// withSuffix strips count trailing sep-delimited segments from path before
// appending suffix, implementing
// `with_suffix(suffix, count=1, sep=".")`.
func withSuffix(path, suffix string, count int, sep string) string {
	dir, base := filepath.Split(path)
	segments := strings.Split(base, sep)
	if count > 0 && count < len(segments) {
		segments = segments[:len(segments)-count]
	} else if count >= len(segments) {
		segments = segments[:0]
	}
	stem := strings.Join(segments, sep)
	return dir + stem + suffix
}

// expandUser expands a leading "~" using HOME/USERPROFILE; "~user" forms are
// refused.
func expandUser(path string) (string, error) {
	if path == "~" {
		return userHome()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := userHome()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("expanduser: \"~user\" forms are not supported")
	}
	return path, nil
}

func userHome() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	if home := os.Getenv("USERPROFILE"); home != "" {
		return home, nil
	}
	return "", fmt.Errorf("expanduser: HOME/USERPROFILE not set")
}
