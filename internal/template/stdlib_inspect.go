package template

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"
)

// registerInspectionHelpers wires the file-inspection helper group: size,
// contents, linecount.
func (r *Registry) registerInspectionHelpers(h map[string]HelperFunc) {
	h["size"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		info, err := r.FS.stat(path)
		if err != nil {
			return nil, err
		}
		return info.Size(), nil
	}
	h["contents"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		encoding := argStringOr(args, 1, "utf-8")
		if encoding != "utf-8" {
			return nil, fmt.Errorf("contents: unsupported encoding %q (only utf-8 is recognised)", encoding)
		}
		f, err := r.FS.open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("contents: %q is not valid UTF-8", path)
		}
		return string(data), nil
	}
	h["linecount"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		f, err := r.FS.open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		count := 0
		for scanner.Scan() {
			count++
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return count, nil
	}
}
