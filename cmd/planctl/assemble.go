package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specvital/planner/internal/app"
	"github.com/specvital/planner/internal/domain/plan"
	"github.com/specvital/planner/internal/infra/config"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

func newAssembleCmd() *cobra.Command {
	var (
		budget   string
		country  string
		ideaPath string
		industry string
		outPath  string
		useMock  bool
	)

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Generate a plan section by section and print the combined document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := readInput(cmd, ideaPath)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if useMock {
				cfg.AI.MockMode = true
			}
			if !cfg.AI.HasCredentials() {
				return fmt.Errorf("no API key configured for provider %q (use --mock to run offline)", cfg.AI.Provider)
			}

			ctx := cmd.Context()
			generator, err := app.NewGenerator(ctx, cfg.AI)
			if err != nil {
				return err
			}
			defer generator.Close()

			assembler := planuc.NewAssembleUseCase(generator,
				planuc.WithSectionRetry(app.SectionRetryConfig(cfg.Section)),
			)
			result, err := assembler.Execute(ctx, plan.GenerationRequest{
				Budget:   plan.Budget(budget),
				Country:  country,
				Industry: industry,
			}, idea)
			if err != nil {
				return err
			}

			if degraded := result.Degraded(); len(degraded) > 0 {
				names := make([]string, len(degraded))
				for i, id := range degraded {
					names[i] = string(id)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "degraded sections: %s\n", strings.Join(names, ", "))
			}

			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Document)
				return err
			}
			return os.WriteFile(outPath, []byte(result.Document+"\n"), 0o644)
		},
	}

	cmd.Flags().StringVar(&budget, "budget", string(plan.BudgetMedium), "budget bracket or amount")
	cmd.Flags().StringVar(&country, "country", "", "target country")
	cmd.Flags().StringVar(&ideaPath, "idea", "-", "idea file, - for stdin")
	cmd.Flags().StringVar(&industry, "industry", "", "industry of the business")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document to a file")
	cmd.Flags().BoolVar(&useMock, "mock", false, "use the deterministic mock provider")
	_ = cmd.MarkFlagRequired("industry")
	return cmd
}
