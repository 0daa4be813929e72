package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp builds the components, runs fn and releases them.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := buildApp(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
