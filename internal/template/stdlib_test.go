package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/template"
)

func newRegistry(t *testing.T) (*template.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	fsRoot, err := template.OpenFSRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsRoot.Close() })
	return template.NewRegistry(fsRoot, nil, false, filepath.Join(dir, ".cache")), dir
}

func TestFileTypeTestsAndInspection(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\nworld\n"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `file("a.txt")`)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = template.Eval(env, `dir("a.txt")`)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = template.Eval(env, `file("missing.txt")`)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	v, err = template.Eval(env, `linecount("a.txt")`)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = template.Eval(env, `size("a.txt")`)
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
}

func TestHashRejectsLegacyAlgorithmsUnlessEnabled(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	env := template.NewEnv(reg.Helpers())

	_, err := template.Eval(env, `hash("a.txt", "md5")`)
	require.Error(t, err)

	_, err = template.Eval(env, `hash("a.txt", "sha256")`)
	require.NoError(t, err)
}

func TestWithSuffixStripsTrailingSegments(t *testing.T) {
	reg, _ := newRegistry(t)
	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `with_suffix("archive.tar.gz", ".bz2")`)
	require.NoError(t, err)
	assert.Equal(t, "archive.tar.bz2", v)
}

func TestCollectionHelpers(t *testing.T) {
	reg, _ := newRegistry(t)
	env := template.NewEnv(reg.Helpers())
	env.Set("items", []any{"a", "b", "a", "c"})

	v, err := template.Eval(env, `uniq(items)`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)

	env.Set("nested", []any{[]any{"x", "y"}, []any{"z"}})
	v, err = template.Eval(env, `flatten(nested)`)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y", "z"}, v)
}
