package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/template"
)

func TestGlobExpandsSortedMatches(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.txt")`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a.txt", "b.txt"}, v)
	assert.True(t, env.Impure())
}

func TestGlobInvalidPatternErrors(t *testing.T) {
	reg, _ := newRegistry(t)
	env := template.NewEnv(reg.Helpers())
	_, err := template.Eval(env, `glob("[")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid glob pattern")
}

func TestGlobReturnsEmptyWhenNoMatches(t *testing.T) {
	reg, _ := newRegistry(t)
	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.nomatch")`)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestGlobDoesNotCrossSeparator(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "x.txt"), []byte("x"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.txt")`)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestGlobMatchesDotfilesWithWildcards(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("h"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.txt")`)
	require.NoError(t, err)
	assert.Equal(t, []any{".hidden.txt"}, v)
}

func TestGlobIsCaseSensitive(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UPPER.TXT"), []byte("x"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.txt")`)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}

func TestGlobRejectsUnmatchedBrace(t *testing.T) {
	reg, _ := newRegistry(t)
	env := template.NewEnv(reg.Helpers())
	_, err := template.Eval(env, `glob("{a,b")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmatched '{'")
}

func TestGlobExcludesDirectoriesFromMatches(t *testing.T) {
	reg, dir := newRegistry(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	env := template.NewEnv(reg.Helpers())
	v, err := template.Eval(env, `glob("*.txt")`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a.txt"}, v)
}
