// Package cmd provides Cobra CLI commands for lacquer.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/app"
)

var (
	application *app.App
	version     = "dev"

	rootCmd = &cobra.Command{
		Use:   "lacquer",
		Short: "Skin and theme switching engine",
		Long: `Lacquer - a skin switching engine with light/dark/auto modes.

Skins are named sets of style variables, shipped built-in or installed at
runtime from JSON. The current selection persists across runs; auto mode
follows the desktop color scheme live.

Use 'lacquer list' to see the available skins and 'lacquer use <skin>' to
switch.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			application, err = app.NewApp(version)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if application != nil {
				_ = application.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the engine version (called from main before Execute).
func SetVersion(v string) {
	version = v
}
