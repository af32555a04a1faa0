package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
)

var installUse bool

var installCmd = &cobra.Command{
	Use:   "install <file-or-url>",
	Short: "Install a skin from a JSON file or URL",
	Long: `Install a skin from local JSON or a remote URL.

The data must declare an id and at least one variable partition. An
installed skin with the same id as a built-in one shadows it until
uninstalled.

Examples:
  lacquer install ./ocean.json
  lacquer install https://skins.lacquer.dev/ocean.json --use`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := styles.NewTheme()

		data, originURL, err := application.FetchInstallData(application.Ctx, args[0])
		if err != nil {
			return err
		}

		skin, err := application.Registry.Install(application.Ctx, data, originURL)
		if err != nil {
			return err
		}
		cmd.Printf("%s %s %s\n",
			theme.Success.Render("installed"),
			theme.Title.Render(skin.Label),
			theme.Subtle.Render("("+skin.ID+")"))

		if installUse {
			if err := application.Engine.Select(application.Ctx, skin.ID, ""); err != nil {
				return err
			}
			cmd.Println(theme.Success.Render("switched to " + skin.ID))
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installUse, "use", false, "switch to the skin after installing")
	rootCmd.AddCommand(installCmd)
}
