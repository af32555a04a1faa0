package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <skin>",
	Short: "Remove an installed skin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := styles.NewTheme()

		if err := application.Registry.Uninstall(application.Ctx, args[0]); err != nil {
			return err
		}
		cmd.Println(theme.Success.Render("uninstalled " + args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
