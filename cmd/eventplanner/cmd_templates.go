package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eventplanner/internal/render"
	"eventplanner/internal/vectorstore"
)

var templatesFlags struct {
	k    int
	json bool
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and search the event template catalog",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app) error {
			tpls := a.planner.Templates()
			if templatesFlags.json {
				return printJSON(cmd.OutOrStdout(), tpls)
			}
			for _, t := range tpls {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", t.ID, t.Text)
			}
			return nil
		})
	},
}

var templatesSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Rank templates by similarity to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, func(a *app) error {
			res, err := a.planner.Search(cmd.Context(), query, templatesFlags.k)
			if err != nil {
				return err
			}
			if templatesFlags.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Results(res, query))
			return nil
		})
	},
}

var templatesRelevantCmd = &cobra.Command{
	Use:   "relevant <category-hint> [extra...]",
	Short: "Fetch the five templates most relevant to an event category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, extra := args[0], strings.Join(args[1:], " ")
		return withApp(cmd, func(a *app) error {
			res, err := a.planner.Relevant(cmd.Context(), hint, extra)
			if err != nil {
				return err
			}
			if templatesFlags.json {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Results(res, vectorstore.RelevantQuery(hint, extra)))
			return nil
		})
	},
}

func init() {
	templatesCmd.PersistentFlags().BoolVar(&templatesFlags.json, "json", false, "Print JSON")
	templatesSearchCmd.Flags().IntVarP(&templatesFlags.k, "top-k", "k", vectorstore.DefaultTopK, "Number of templates to return")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSearchCmd)
	templatesCmd.AddCommand(templatesRelevantCmd)
}
