package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leynos/netsuke-go/internal/ninjaexec"
)

var emitPath string

// buildCmd is also the root command's default action (rootCmd's RunE in
// root.go delegates to runBuild), so both `netsuke` and `netsuke build`
// compile and execute.
var buildCmd = &cobra.Command{
	Use:   "build [targets...]",
	Short: "Compile the manifest and invoke the executor",
	RunE:  runBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&emitPath, "emit", "", "also write the synthesised build file to this path")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	graph, err := p.Compile(manifestPath, nil)
	if err != nil {
		return err
	}

	dir, err := getWorkDir()
	if err != nil {
		return err
	}
	buildFile := filepath.Join(dir, ".netsuke", "build.ninja")
	if err := os.MkdirAll(filepath.Dir(buildFile), 0o755); err != nil {
		return fmt.Errorf("preparing build directory: %w", err)
	}
	f, err := os.Create(buildFile)
	if err != nil {
		return fmt.Errorf("creating build file: %w", err)
	}
	if err := p.Synthesize(graph, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing build file: %w", err)
	}

	if emitPath != "" {
		if err := copyFile(buildFile, emitPath); err != nil {
			return err
		}
	}

	targets := args
	if len(targets) == 0 {
		targets = graph.DefaultTargets
	}

	_, err = p.Invoke(context.Background(), ninjaexec.Options{
		BuildFile: buildFile,
		Jobs:      jobs,
		Verbose:   verbose,
		Targets:   targets,
		Dir:       dir,
	})
	return err
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading synthesised build file: %w", err)
	}
	if dst == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
