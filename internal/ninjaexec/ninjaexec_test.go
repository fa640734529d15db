package ninjaexec_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/ninjaexec"
	"github.com/leynos/netsuke-go/internal/status"
)

func TestRedactArgRedactsSensitiveKeysCaseInsensitively(t *testing.T) {
	assert.Equal(t, "token=***REDACTED***", ninjaexec.RedactArg("token=abc"))
	assert.Equal(t, "auth=***REDACTED***", ninjaexec.RedactArg("auth = token123"))
	assert.Equal(t, "path=/tmp", ninjaexec.RedactArg("path=/tmp"))
	assert.Equal(t, "secrets.yml", ninjaexec.RedactArg("secrets.yml"))
}

func TestRedactArgsRedactsWholeSlice(t *testing.T) {
	got := ninjaexec.RedactArgs([]string{"ninja", "token=abc", "path=/tmp"})
	assert.Equal(t, []string{"ninja", "token=***REDACTED***", "path=/tmp"}, got)
}

func TestArgsOrdersFlagsPerSpec(t *testing.T) {
	args := ninjaexec.Args(ninjaexec.Options{
		BuildFile: "build.ninja",
		Jobs:      4,
		Verbose:   true,
		Tool:      "clean",
		Targets:   []string{"out"},
	})
	assert.Equal(t, []string{"-f", "build.ninja", "-j", "4", "-v", "-t", "clean", "out"}, args)
}

func TestResolveUsesEnvOverride(t *testing.T) {
	t.Setenv("NETSUKE_NINJA", "/custom/ninja")
	got, err := ninjaexec.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "/custom/ninja", got)
}

func TestResolveFailsWhenNotFound(t *testing.T) {
	t.Setenv("NETSUKE_NINJA", "")
	t.Setenv("PATH", "")
	_, err := ninjaexec.Resolve()
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindExecutorNotFound, e.K)
}

// fakeReporter records Task calls for assertion.
type fakeReporter struct {
	tasks []status.TaskProgress
}

func (f *fakeReporter) Stage(status.Event)          {}
func (f *fakeReporter) Done()                       {}
func (f *fakeReporter) Task(c, total uint32, d string) {
	f.tasks = append(f.tasks, status.TaskProgress{Current: c, Total: total, Description: d})
}

func TestRunStreamsProgressAndSurfacesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake ninja script is POSIX-only")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ninja")
	body := "#!/bin/sh\necho '[1/2] step one'\necho '[2/2] step two'\nexit 3\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	t.Setenv("NETSUKE_NINJA", script)

	reporter := &fakeReporter{}
	_, err := ninjaexec.Run(context.Background(), ninjaexec.Options{BuildFile: "build.ninja"}, reporter)
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindExecutorExit, e.K)
	assert.Equal(t, 3, e.Details["exit_code"])
	require.Len(t, reporter.tasks, 2)
	assert.Equal(t, "step one", reporter.tasks[0].Description)
}
