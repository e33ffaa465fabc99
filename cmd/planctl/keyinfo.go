package main

import (
	"github.com/spf13/cobra"

	"github.com/specvital/planner/internal/domain/plan"
)

type keyInfoOutput struct {
	Concept          string `json:"concept"`
	Problem          string `json:"problem"`
	TargetMarket     string `json:"targetMarket"`
	ValueProposition string `json:"valueProposition"`
}

func newKeyInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keyinfo <idea-file|->",
		Short: "Extract problem, concept, value proposition and target market from an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			info := plan.ExtractKeyInformation(text)
			return writeJSON(cmd.OutOrStdout(), keyInfoOutput{
				Concept:          info.Concept,
				Problem:          info.Problem,
				TargetMarket:     info.TargetMarket,
				ValueProposition: info.ValueProposition,
			})
		},
	}
}
