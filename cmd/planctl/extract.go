package main

import (
	"github.com/spf13/cobra"

	"github.com/specvital/planner/internal/adapter/section"
	"github.com/specvital/planner/internal/domain/plan"
)

func newExtractCmd() *cobra.Command {
	var sectionID string

	cmd := &cobra.Command{
		Use:   "extract <plan-file|->",
		Short: "Locate plan sections and report the method that found each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			extractor := section.NewExtractor(plan.DefaultCatalog())
			if sectionID == "" {
				return writeJSON(cmd.OutOrStdout(), extractor.ExtractAll(doc))
			}

			id, err := plan.ParseSectionID(sectionID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), extractor.Extract(doc, id))
		},
	}

	cmd.Flags().StringVarP(&sectionID, "section", "s", "", "extract a single section id")
	return cmd
}
