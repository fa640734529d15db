package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leynos/netsuke-go/internal/cli"
	"github.com/leynos/netsuke-go/internal/ninjaexec"
)

var cleanYes bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build outputs via the executor's clean tool",
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	if !cleanYes {
		ok, err := cli.Confirm("Remove all build outputs?", false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

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

	_, err = p.Invoke(context.Background(), ninjaexec.Options{
		BuildFile: buildFile,
		Tool:      "clean",
		Dir:       dir,
	})
	return err
}
