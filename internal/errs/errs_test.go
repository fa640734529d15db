package errs_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/errs"
)

func TestNewAndCode(t *testing.T) {
	e := errs.New(errs.KindDuplicateOutput, "output already declared")
	assert.Equal(t, "DUPLICATE_OUTPUT", e.Code())
	assert.Contains(t, e.Error(), "output already declared")
}

func TestWithDetailAndWithCause(t *testing.T) {
	cause := errors.New("disk full")
	e := errs.New(errs.KindHelperIO, "write failed").
		WithDetail("path", "/tmp/out").
		WithCause(cause)

	assert.Equal(t, "/tmp/out", e.Details["path"])
	require.Error(t, e.Cause)
	assert.Contains(t, e.Error(), "disk full")
	assert.NotEmpty(t, e.Stack())
}

func TestIsMatchesOnKind(t *testing.T) {
	a := errs.New(errs.KindCycleDetected, "cycle a")
	b := errs.New(errs.KindCycleDetected, "cycle b")
	c := errs.New(errs.KindRuleNotFound, "missing rule")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestMarshalJSONIncludesCauseMessage(t *testing.T) {
	e := errs.New(errs.KindExecutorExit, "ninja failed").
		WithCause(errors.New("exit status 1")).
		WithDetail("exit_code", 1)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "EXECUTOR_EXIT", decoded["code"])
	assert.Contains(t, decoded["cause"], "exit status 1")
}
