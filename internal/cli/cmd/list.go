package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available skins",
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()
		current := application.Engine.Selection().SkinID

		for _, skin := range application.Registry.List() {
			marker := "  "
			if skin.ID == current {
				marker = theme.Success.Render("* ")
			}

			badge := theme.BadgeMuted.Render("built-in")
			if !skin.BuiltIn() {
				badge = theme.Badge.Render("installed")
			}

			cmd.Printf("%s%s %s %s %s %s\n",
				marker,
				styles.Swatch(skin.Swatch.Light),
				styles.Swatch(skin.Swatch.Dark),
				theme.Normal.Render(skin.Label),
				theme.Subtle.Render("("+skin.ID+")"),
				badge,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
