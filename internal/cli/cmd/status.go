package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
	"github.com/bnema/lacquer/internal/domain/entity"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current skin, mode, and resolved appearance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()
		selection := application.Engine.Selection()
		resolved := application.Engine.ResolvedMode()

		skin, ok := application.Registry.Get(selection.SkinID)
		label := selection.SkinID
		var swatch string
		if ok {
			label = skin.Label
			swatch = skin.Swatch.Light
			if resolved == entity.ModeDark {
				swatch = skin.Swatch.Dark
			}
		}

		cmd.Println(theme.Title.Render("Current skin"))
		cmd.Printf("  %s %s %s\n", styles.Swatch(swatch), theme.Normal.Render(label), theme.Subtle.Render("("+selection.SkinID+")"))
		cmd.Printf("  %s %s", theme.Subtle.Render("mode:"), theme.Normal.Render(string(selection.Mode)))
		if selection.Mode == entity.ModeAuto {
			cmd.Printf(" %s", theme.Subtle.Render(fmt.Sprintf("(resolved: %s)", resolved)))
		}
		cmd.Println()

		override := application.Engine.FontOverride()
		if override.Enabled {
			cmd.Printf("  %s %s\n", theme.Subtle.Render("fonts:"), theme.Badge.Render("override active"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
