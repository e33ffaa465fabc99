package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planctl",
		Short: "Run the business plan pipeline offline",
		Long: `planctl runs the plan pipeline steps on local files.

Examples:
  # Pull key facts out of a generated idea
  planctl keyinfo idea.md

  # Show how each section of a plan is located
  planctl extract plan.md

  # Render one section as HTML
  planctl render plan.md --section market-analysis

  # Assemble a plan with the mock provider
  planctl assemble --idea idea.md --industry technology --country Kenya --budget medium --mock`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAssembleCmd(),
		newExtractCmd(),
		newKeyInfoCmd(),
		newRenderCmd(),
	)
	return root
}

// readInput reads the named file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
