package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// manifestCmd renders the build file without invoking the executor
// ("-" means stdout).
var manifestCmd = &cobra.Command{
	Use:   "manifest <path>",
	Short: "Render the synthesised build file without invoking the executor",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}

func runManifest(cmd *cobra.Command, args []string) error {
	dest := args[0]

	p, err := newPipeline()
	if err != nil {
		return err
	}
	graph, err := p.Compile(manifestPath, nil)
	if err != nil {
		return err
	}

	if dest == "-" {
		return p.Synthesize(graph, os.Stdout)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := p.Synthesize(graph, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
