package template

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/leynos/netsuke-go/internal/errs"
)

// fetchTotalTimeout is the HTTP client's overall timeout, and the request
// context's deadline is fetchConnectTimeout+fetchTotalTimeout. There are no
// separate connect, read or write timeouts. fetchByteCap caps the response
// body.
const (
	fetchConnectTimeout = 10 * time.Second
	fetchTotalTimeout   = 60 * time.Second
	fetchByteCap        = 16 << 20 // 16 MiB
)

// registerFetchHelper wires fetch(url, cache=false), grounded on
// registry.Cache's TTL'd on-disk cache keyed by name, generalised to
// cache-by-SHA-256-of-URL. Policy enforcement runs before any network I/O.
func (r *Registry) registerFetchHelper(h map[string]HelperFunc) {
	h["fetch"] = func(env *Env, args []any) (any, error) {
		url, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		useCache := argBoolOr(args, 1, false)

		if r.Policy != nil {
			if err := r.Policy.EvaluateURL(url); err != nil {
				return nil, err
			}
		}

		if useCache {
			env.MarkImpure()
			if cached, ok, err := r.readCache(url); err != nil {
				return nil, err
			} else if ok {
				return cached, nil
			}
		}

		env.MarkImpure()
		body, err := fetchURL(url)
		if err != nil {
			return nil, err
		}

		if useCache {
			if err := r.writeCache(url, body); err != nil {
				return nil, err
			}
		}
		return string(body), nil
	}
}

func fetchURL(url string) ([]byte, error) {
	client := &http.Client{Timeout: fetchTotalTimeout}
	ctx, cancel := context.WithTimeout(context.Background(), fetchConnectTimeout+fetchTotalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.KindHelperIO, "fetch: invalid request").WithCause(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.New(errs.KindHelperIO, "fetch: request failed").WithDetail("url", url).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchByteCap+1))
	if err != nil {
		return nil, errs.New(errs.KindHelperIO, "fetch: reading response").WithCause(err)
	}
	if len(body) > fetchByteCap {
		return nil, errs.New(errs.KindHelperIO, "fetch: response exceeded byte cap").WithDetail("url", url)
	}
	if resp.StatusCode >= 400 {
		return nil, errs.New(errs.KindHelperIO, "fetch: non-success status").
			WithDetail("url", url).WithDetail("status", resp.StatusCode)
	}
	return body, nil
}

func (r *Registry) cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (r *Registry) cachePath(url string) string {
	return filepath.Join(r.CacheDir, "fetch", r.cacheKey(url))
}

func (r *Registry) readCache(url string) ([]byte, bool, error) {
	if r.CacheDir == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(r.cachePath(url))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errs.New(errs.KindHelperIO, "fetch: reading cache").WithCause(err)
	}
	return data, true, nil
}

func (r *Registry) writeCache(url string, body []byte) error {
	if r.CacheDir == "" {
		return nil
	}
	path := r.cachePath(url)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.New(errs.KindHelperIO, "fetch: creating cache dir").WithCause(err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errs.New(errs.KindHelperIO, "fetch: writing cache").WithCause(err)
	}
	return nil
}
