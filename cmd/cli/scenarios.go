package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios defined in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range app.cfg.ScenarioNames() {
				s := app.cfg.Scenarios[name]
				fmt.Printf("%-20s temp=%.2f seed=%d", name, s.PriorityTemperature, s.Seed)
				if s.Description != "" {
					fmt.Printf("  %s", s.Description)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
