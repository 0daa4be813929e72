package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eventplanner/internal/render"
)

var planFlags struct {
	json bool
}

var planCmd = &cobra.Command{
	Use:   "plan <request...>",
	Short: "Plan an event from a plain-language request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planFlags.json, "json", false, "Print the full planning record as JSON")
}

func runPlan(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	return withApp(cmd, func(a *app) error {
		rec, err := a.planner.Plan(cmd.Context(), input)
		out := cmd.OutOrStdout()
		if rec != nil {
			if planFlags.json {
				if jerr := printJSON(out, rec); jerr != nil {
					return jerr
				}
			} else {
				fmt.Fprint(out, render.Record(rec))
			}
		}
		if err != nil {
			return fmt.Errorf("planning failed: %w", err)
		}
		return nil
	})
}
