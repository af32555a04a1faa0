package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/model"
	"github.com/bnema/lacquer/internal/cli/styles"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a skin interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()

		picker := model.NewPickModel(theme, application.Registry.List(), application.Engine.Selection().SkinID)
		program := tea.NewProgram(picker)

		final, err := program.Run()
		if err != nil {
			return err
		}

		result, ok := final.(model.PickModel)
		if !ok || result.Selected() == "" {
			return nil
		}

		if err := application.Engine.Select(application.Ctx, result.Selected(), ""); err != nil {
			return err
		}
		cmd.Println(theme.Success.Render("switched to " + result.Selected()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)
}
