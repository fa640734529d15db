package template

import (
	"crypto/md5"  //nolint:gosec // gated behind the legacy-digests capability flag
	"crypto/sha1" //nolint:gosec // gated behind the legacy-digests capability flag
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// registerHashHelpers wires hash(algorithm) and digest(length, algorithm).
// sha256/sha512 are always available; sha1/md5 require Registry.Legacy.
func (r *Registry) registerHashHelpers(h map[string]HelperFunc) {
	h["hash"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		algo := argStringOr(args, 1, "sha256")
		return r.digestFile(path, algo, -1)
	}
	h["digest"] = func(env *Env, args []any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		length := argIntOr(args, 1, 8)
		algo := argStringOr(args, 2, "sha256")
		return r.digestFile(path, algo, length)
	}
}

func (r *Registry) digestFile(path, algo string, truncate int) (string, error) {
	hasher, err := r.newHasher(algo)
	if err != nil {
		return "", err
	}
	f, err := r.FS.open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	sum := hex.EncodeToString(hasher.Sum(nil))
	if truncate > 0 && truncate < len(sum) {
		sum = sum[:truncate]
	}
	return sum, nil
}

func (r *Registry) newHasher(algo string) (hash.Hash, error) {
	switch algo {
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	case "sha1":
		if !r.Legacy {
			return nil, fmt.Errorf("hash: algorithm %q requires the legacy-digests capability", algo)
		}
		return sha1.New(), nil
	case "md5":
		if !r.Legacy {
			return nil, fmt.Errorf("hash: algorithm %q requires the legacy-digests capability", algo)
		}
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("hash: unknown algorithm %q", algo)
	}
}
