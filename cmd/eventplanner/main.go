// eventplanner turns free-text event requests into structured event plans.
//
// Usage:
//
//	eventplanner plan "birthday party for 30 people under 20k" [--json]
//	eventplanner tui
//	eventplanner templates list|search|relevant
//	eventplanner tools budget|guests|schedule|menu
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
