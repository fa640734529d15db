package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var graphJSON bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the resolved build graph without invoking the executor",
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(graphCmd)
}

type graphEdge struct {
	Output   string   `json:"output"`
	ActionID string   `json:"action_id"`
	Inputs   []string `json:"inputs"`
	Phony    bool     `json:"phony"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	graph, err := p.Compile(manifestPath, nil)
	if err != nil {
		return err
	}

	outputs := make([]string, 0, len(graph.Edges))
	for output := range graph.Edges {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)

	if graphJSON {
		edges := make([]graphEdge, 0, len(outputs))
		for _, output := range outputs {
			e := graph.Edges[output]
			edges = append(edges, graphEdge{Output: output, ActionID: e.ActionID, Inputs: e.Inputs, Phony: e.Phony})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Edges   []graphEdge `json:"edges"`
			Default []string    `json:"default_targets"`
		}{Edges: edges, Default: graph.DefaultTargets})
	}

	for _, output := range outputs {
		e := graph.Edges[output]
		fmt.Printf("%s: %s %v\n", output, e.ActionID, e.Inputs)
	}
	fmt.Printf("default: %v\n", graph.DefaultTargets)
	return nil
}
