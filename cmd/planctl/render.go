package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specvital/planner/internal/adapter/render"
	"github.com/specvital/planner/internal/adapter/section"
	"github.com/specvital/planner/internal/domain/plan"
)

func newRenderCmd() *cobra.Command {
	var (
		asJSON    bool
		sectionID string
	)

	cmd := &cobra.Command{
		Use:   "render <plan-file|->",
		Short: "Render plan sections as styled HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			catalog := plan.DefaultCatalog()
			renderer := render.NewRenderer(catalog, section.NewExtractor(catalog))
			sections := renderer.RenderPlan(doc)

			if sectionID != "" {
				id, err := plan.ParseSectionID(sectionID)
				if err != nil {
					return err
				}
				sections = sections[id.Index() : id.Index()+1]
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sections)
			}
			for _, s := range sections {
				fmt.Fprintf(cmd.OutOrStdout(), "<section id=\"%s\">\n<h2>%s</h2>\n%s\n</section>\n", s.ID, s.Title, s.HTML)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print sections as JSON")
	cmd.Flags().StringVarP(&sectionID, "section", "s", "", "render a single section id")
	return cmd
}
