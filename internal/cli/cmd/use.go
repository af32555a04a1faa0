package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/engine"
)

var useMode string

var useCmd = &cobra.Command{
	Use:   "use <skin>",
	Short: "Switch to a skin",
	Long: `Switch to a skin, optionally forcing a display mode.

Examples:
  lacquer use nord               # Keep the current mode
  lacquer use nord --mode dark   # Force dark
  lacquer use default --mode auto`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := styles.NewTheme()

		err := application.Engine.Select(application.Ctx, args[0], entity.Mode(useMode))
		if err != nil {
			var applyErr *engine.ApplyError
			if errors.As(err, &applyErr) {
				cmd.PrintErrln(theme.Error.Render(
					fmt.Sprintf("skin %q could not be applied, reverted to default", applyErr.SkinID)))
			}
			return err
		}

		selection := application.Engine.Selection()
		cmd.Printf("%s %s %s\n",
			theme.Success.Render("switched to"),
			theme.Title.Render(selection.SkinID),
			theme.Subtle.Render("("+string(selection.Mode)+")"))
		return nil
	},
}

func init() {
	useCmd.Flags().StringVarP(&useMode, "mode", "m", "", "display mode: light, dark, or auto (default: keep current)")
	rootCmd.AddCommand(useCmd)
}
