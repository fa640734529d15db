// Package pipeline wires the manifest-to-build-graph-to-output-file stages
// into the single struct cmd/netsuke drives: ingest, structural parse,
// template expansion, manifest validation, IR construction, output
// synthesis, and executor invocation. The struct carries its Logger and
// status Reporter as plain fields, never package-level globals.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/leynos/netsuke-go/internal/buildfile"
	"github.com/leynos/netsuke-go/internal/i18n"
	"github.com/leynos/netsuke-go/internal/ir"
	"github.com/leynos/netsuke-go/internal/manifest"
	"github.com/leynos/netsuke-go/internal/netsukecfg"
	"github.com/leynos/netsuke-go/internal/ninjaexec"
	"github.com/leynos/netsuke-go/internal/status"
	"github.com/leynos/netsuke-go/internal/template"
)

// Pipeline threads the capability objects every stage needs: structured
// logging, the localisation catalogue, the progress reporter, and the
// decoded netsuke.toml settings.
type Pipeline struct {
	Logger       *logrus.Entry
	Loc          *i18n.Catalogue
	Reporter     status.Reporter
	Config       *netsukecfg.Config
	WorkspaceDir string
}

// New builds a Pipeline from its capability objects. A nil Reporter is
// replaced with a no-op so callers (and tests) need not construct one just
// to silence stage events.
func New(logger *logrus.Entry, loc *i18n.Catalogue, reporter status.Reporter, cfg *netsukecfg.Config, workspaceDir string) *Pipeline {
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &Pipeline{Logger: logger, Loc: loc, Reporter: reporter, Config: cfg, WorkspaceDir: workspaceDir}
}

type noopReporter struct{}

func (noopReporter) Stage(status.Event)          {}
func (noopReporter) Task(uint32, uint32, string) {}
func (noopReporter) Done()                       {}

const totalStages = 6

func (p *Pipeline) emit(stage status.Stage, index int, executorName string) {
	p.Reporter.Stage(status.NewEvent(p.Loc, stage, index, totalStages, executorName))
}

// Compile runs the ingest-through-IR-construction stages and returns the
// resulting BuildGraph. manifestPath is the path to load (pass "-" to
// read stdin via r).
func (p *Pipeline) Compile(manifestPath string, r io.Reader) (*ir.BuildGraph, error) {
	p.emit(status.StageIngest, 1, "")
	doc, err := p.load(manifestPath, r)
	if err != nil {
		return nil, err
	}

	p.emit(status.StageParse, 2, "")
	// Structural parse already happened inside load/ParseDocument; this
	// stage event exists because ingest and structural parse are reported
	// as distinct stages even though this implementation performs them in
	// one pass over the YAML decoder.

	p.emit(status.StageExpand, 3, "")
	env := p.newEnv()
	expandedRoot, err := template.Expand(env, doc.Root)
	if err != nil {
		return nil, fmt.Errorf("template expansion: %w", err)
	}
	expanded := &manifest.Document{Path: doc.Path, Root: expandedRoot, Raw: doc.Raw}

	m, err := manifest.Decode(expanded)
	if err != nil {
		return nil, err
	}

	p.emit(status.StageIR, 4, "")
	graph, err := ir.Build(m)
	if err != nil {
		return nil, err
	}
	if cycle, missing := ir.DetectCycles(graph); len(cycle) > 0 {
		return nil, fmt.Errorf("dependency cycle: %v (missing: %v)", cycle, missing)
	}

	return graph, nil
}

func (p *Pipeline) load(manifestPath string, r io.Reader) (*manifest.Document, error) {
	if manifestPath == "-" || r != nil {
		return manifest.LoadReader(r, manifestPath)
	}
	return manifest.Load(manifestPath)
}

// newEnv constructs the template evaluation environment for this run's
// workspace and network policy.
func (p *Pipeline) newEnv() *template.Env {
	fsRoot, err := template.OpenFSRoot(p.WorkspaceDir)
	if err != nil {
		// A workspace root that cannot be opened is a configuration error
		// surfaced at first helper use rather than here; an Env with no
		// usable FSRoot still supports every non-filesystem helper.
		fsRoot = nil
	}
	policy, polErr := p.Config.Policy()
	if polErr != nil {
		policy, _ = (&netsukecfg.Config{}).Policy()
	}
	registry := template.NewRegistry(fsRoot, policy, p.Config.LegacyDigests, p.Config.CacheDir)
	return template.NewEnv(registry.Helpers())
}

// Synthesize writes graph to w in ninja syntax.
func (p *Pipeline) Synthesize(graph *ir.BuildGraph, w io.Writer) error {
	p.emit(status.StageSynthesize, 5, "")
	return buildfile.Write(w, graph)
}

// Invoke spawns the executor per opts, reporting its stage and task
// progress through p.Reporter.
func (p *Pipeline) Invoke(ctx context.Context, opts ninjaexec.Options) (*ninjaexec.Result, error) {
	binaryName := "ninja"
	p.emit(status.StageExecute, 6, binaryName)
	result, err := ninjaexec.Run(ctx, opts, p.Reporter)
	p.Reporter.Done()
	return result, err
}
