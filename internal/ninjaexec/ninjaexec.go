// Package ninjaexec resolves and invokes the ninja executor as a child
// process, parsing its status-line progress stream and surfacing its exit
// code. Argument redaction for diagnostics logging strips credential-shaped
// key/value pairs before they reach a log line.
package ninjaexec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/status"
)

// sensitiveKeys names the argument keys whose values get redacted.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"api_key":       {},
	"apikey":        {},
	"auth":          {},
	"authorization": {},
}

// RedactArg redacts the value half of a "key=value" argument when key
// (case-insensitively, trimmed) names a sensitive credential. Arguments with
// no "=" are returned unchanged, since bare positional arguments carry no
// key to redact by.
func RedactArg(arg string) string {
	key, _, ok := strings.Cut(arg, "=")
	if !ok {
		return arg
	}
	trimmedKey := strings.TrimSpace(key)
	if _, sensitive := sensitiveKeys[strings.ToLower(trimmedKey)]; !sensitive {
		return arg
	}
	return trimmedKey + "=***REDACTED***"
}

// RedactArgs redacts every sensitive argument in args, for diagnostic
// logging.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = RedactArg(a)
	}
	return out
}

// Options configures one invocation of the executor.
type Options struct {
	// BuildFile is the path to the ninja-syntax file to invoke against.
	BuildFile string
	// Jobs, when > 0, is passed as -j <jobs>.
	Jobs int
	// Verbose passes -v.
	Verbose bool
	// Tool, when non-empty, is passed as "-t <tool>" (e.g. "clean", "graph").
	Tool string
	// Targets are positional target names appended to the invocation.
	Targets []string
	// Dir, when set, becomes the child process's working directory.
	Dir string
}

// Resolve finds the executor binary: NETSUKE_NINJA env var if set, else a
// PATH lookup for "ninja".
func Resolve() (string, error) {
	if override := os.Getenv("NETSUKE_NINJA"); override != "" {
		return override, nil
	}
	path, err := exec.LookPath("ninja")
	if err != nil {
		return "", errs.New(errs.KindExecutorNotFound, "could not find the ninja executable").WithCause(err)
	}
	return path, nil
}

// Args builds the command-line arguments for opts, in fixed order:
// -f <build-file>, -j <jobs>, -v, -t <tool>, targets.
func Args(opts Options) []string {
	args := []string{"-f", opts.BuildFile}
	if opts.Jobs > 0 {
		args = append(args, "-j", fmt.Sprintf("%d", opts.Jobs))
	}
	if opts.Verbose {
		args = append(args, "-v")
	}
	if opts.Tool != "" {
		args = append(args, "-t", opts.Tool)
	}
	args = append(args, opts.Targets...)
	return args
}

// Result carries the exit code and captured stderr of an invocation that ran
// to completion. Run also returns it, alongside the KindExecutorExit error,
// when the exit code is non-zero.
type Result struct {
	ExitCode int
	Stderr   string
}

// Run resolves and spawns the executor, streaming stdout line-by-line
// through reporter as task-progress updates (filtered by a status.Tracker
// for monotonicity) and capturing stderr. A non-zero exit becomes
// errs.KindExecutorExit carrying the status code; a missing binary becomes
// errs.KindExecutorNotFound.
func Run(ctx context.Context, opts Options, reporter status.Reporter) (*Result, error) {
	binary, err := Resolve()
	if err != nil {
		return nil, err
	}
	args := Args(opts)

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = opts.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ninjaexec: stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, errs.New(errs.KindExecutorNotFound, "failed to start the ninja executable").WithCause(err)
	}

	var tracker status.Tracker
	scanLines(stdout, func(line string) {
		update, ok := status.ParseTaskLine(line)
		if !ok || !tracker.Accept(update) {
			return
		}
		if reporter != nil {
			reporter.Task(update.Current, update.Total, update.Description)
		}
	})

	waitErr := cmd.Wait()
	result := &Result{Stderr: stderr.String()}
	if waitErr == nil {
		result.ExitCode = 0
		return result, nil
	}
	var exitErr *exec.ExitError
	if ok := asExitError(waitErr, &exitErr); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, errs.New(errs.KindExecutorExit, "ninja exited with a non-zero status").
			WithDetail("exit_code", result.ExitCode).
			WithDetail("stderr", result.Stderr)
	}
	return nil, errs.New(errs.KindExecutorNotFound, "failed to run the ninja executable").WithCause(waitErr)
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

// scanLines reads newline-delimited lines from r, invoking fn for each.
// Extracted so Run's stdout handling is independently testable.
func scanLines(r io.Reader, fn func(line string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fn(scanner.Text())
	}
}
