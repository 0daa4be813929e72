package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventplanner/internal/render"
	"eventplanner/internal/tools"
)

var toolsFlags struct {
	json      bool
	guests    int
	eventType string
	ceiling   float64
	capacity  int
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run the local planning calculators",
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Split an event budget across categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var ceiling *float64
		if cmd.Flags().Changed("ceiling") {
			ceiling = &toolsFlags.ceiling
		}
		res := tools.Budget(toolsFlags.guests, toolsFlags.eventType, ceiling)
		if toolsFlags.json {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Budget(res))
		return nil
	},
}

var guestsCmd = &cobra.Command{
	Use:   "guests",
	Short: "Check a guest count against venue capacity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res := tools.CountGuests(tools.SampleGuests(toolsFlags.guests), toolsFlags.capacity)
		if toolsFlags.json {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Guests(res))
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <event-type>",
	Short: "Show the standard timeline for an event type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slots := tools.ScheduleFor(args[0])
		if toolsFlags.json {
			return printJSON(cmd.OutOrStdout(), slots)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Schedule(slots))
		return nil
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu <item...>",
	Short: "Estimate menu costs for a guest count",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		est := tools.EstimateMenu(args, toolsFlags.guests)
		if toolsFlags.json {
			return printJSON(cmd.OutOrStdout(), est)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Menu(est))
		return nil
	},
}

func init() {
	toolsCmd.PersistentFlags().BoolVar(&toolsFlags.json, "json", false, "Print JSON")
	toolsCmd.PersistentFlags().IntVar(&toolsFlags.guests, "guests", 20, "Guest count")

	budgetCmd.Flags().StringVar(&toolsFlags.eventType, "event-type", "other", "Event category, e.g. birthday_party")
	budgetCmd.Flags().Float64Var(&toolsFlags.ceiling, "ceiling", 0, "Maximum total budget")
	guestsCmd.Flags().IntVar(&toolsFlags.capacity, "capacity", tools.DefaultVenueCapacity, "Venue capacity")

	toolsCmd.AddCommand(budgetCmd)
	toolsCmd.AddCommand(guestsCmd)
	toolsCmd.AddCommand(scheduleCmd)
	toolsCmd.AddCommand(menuCmd)
}
