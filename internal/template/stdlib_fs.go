package template

import (
	"io/fs"
	"os"
)

// registerFSTests wires the file-type test helpers: a path argument
// returns a boolean; non-existence yields false; other I/O errors propagate.
func (r *Registry) registerFSTests(h map[string]HelperFunc) {
	h["dir"] = r.fsTest(func(info fs.FileInfo) bool { return info.IsDir() })
	h["file"] = r.fsTest(func(info fs.FileInfo) bool { return info.Mode().IsRegular() })
	h["symlink"] = r.fsTest(func(info fs.FileInfo) bool { return info.Mode()&os.ModeSymlink != 0 })
	h["pipe"] = r.fsTest(func(info fs.FileInfo) bool { return info.Mode()&os.ModeNamedPipe != 0 })
	h["device"] = r.fsTest(func(info fs.FileInfo) bool { return info.Mode()&os.ModeDevice != 0 })
}

func (r *Registry) fsTest(check func(fs.FileInfo) bool) HelperFunc {
	return func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		info, err := r.FS.stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return nil, err
		}
		return check(info), nil
	}
}
