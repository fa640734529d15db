package template

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
)

// FSRoot scopes every filesystem-touching helper to the workspace directory
// using os.Root (stdlib, Go 1.24+). Absolute paths and "../" escapes are
// rejected by os.Root itself; this wrapper only adds an explicitly
// permitted absolute-path escape hatch.
type FSRoot struct {
	root          *os.Root
	workspaceRoot string
	allowAbsolute bool
}

// OpenFSRoot opens workspaceDir as a capability-scoped root.
func OpenFSRoot(workspaceDir string) (*FSRoot, error) {
	root, err := os.OpenRoot(workspaceDir)
	if err != nil {
		return nil, errs.New(errs.KindHelperIO, "failed to open workspace root").
			WithDetail("path", workspaceDir).WithCause(err)
	}
	return &FSRoot{root: root, workspaceRoot: workspaceDir}, nil
}

// AllowAbsolute permits helpers to resolve absolute paths outside the
// workspace root. Off by default.
func (f *FSRoot) AllowAbsolute(allow bool) { f.allowAbsolute = allow }

// Close releases the underlying root handle.
func (f *FSRoot) Close() error { return f.root.Close() }

func (f *FSRoot) stat(path string) (fs.FileInfo, error) {
	if f.allowAbsolute && isAbs(path) {
		return os.Lstat(path)
	}
	return f.root.Lstat(path)
}

func (f *FSRoot) open(path string) (*os.File, error) {
	if f.allowAbsolute && isAbs(path) {
		return os.Open(path)
	}
	return f.root.Open(path)
}

func isAbs(path string) bool {
	return len(path) > 0 && (path[0] == '/' || (len(path) > 2 && path[1] == ':'))
}

// glob resolves pattern to the sorted list of regular files it matches,
// scoped to the root unless pattern is absolute and escape is permitted.
// Directories and other non-regular entries are filtered out of the result.
func (f *FSRoot) glob(pattern string) ([]string, error) {
	// Match's syntax check runs independently of whether any directory entry
	// is present to compare against, so this surfaces a malformed pattern
	// (e.g. an unterminated "[") even when the scoped directory is empty -
	// fs.Glob/filepath.Glob only report ErrBadPattern once they reach a
	// directory entry to test it against.
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	if f.allowAbsolute && isAbs(pattern) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		return filterRegularFiles(matches, func(p string) (fs.FileInfo, error) { return os.Stat(p) })
	}
	matches, err := fs.Glob(f.root.FS(), strings.TrimPrefix(pattern, "/"))
	if err != nil {
		return nil, err
	}
	return filterRegularFiles(matches, f.root.Stat)
}

// filterRegularFiles keeps only the matches that stat to a regular file,
// converting every surviving path to forward-slash form.
func filterRegularFiles(matches []string, stat func(string) (fs.FileInfo, error)) ([]string, error) {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := stat(m)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			out = append(out, filepath.ToSlash(m))
		}
	}
	return out, nil
}
