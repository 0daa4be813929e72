package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"eventplanner/internal/logging"
	"eventplanner/internal/tui"
)

var tuiFlags struct {
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Plan events interactively",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFlags.logFile, "log-file", "", "Write logs to this file while the TUI runs (default: discard)")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Log lines would tear the alternate screen.
	var w io.Writer = io.Discard
	if tuiFlags.logFile != "" {
		f, err := os.OpenFile(tuiFlags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	logging.Init(appConfig.Logging.Level, appConfig.Logging.Format, w)

	return withApp(cmd, func(a *app) error {
		m := tui.New(cmd.Context(), a.planner)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	})
}
