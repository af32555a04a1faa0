package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
)

var catalogRefresh bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List installable skins from the remote catalog",
	Long: `List the skins advertised by the remote catalog.

The catalog is cached locally for the configured TTL; --refresh forces a
fetch. Entries requiring a newer engine version are hidden.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()

		names, err := application.Catalog.Names(application.Ctx, catalogRefresh)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println(theme.Subtle.Render("catalog is empty"))
			return nil
		}

		installed := make(map[string]bool)
		for _, skin := range application.Registry.List() {
			installed[skin.ID] = true
		}

		for _, name := range names {
			if installed[name] {
				cmd.Printf("  %s %s\n", theme.Normal.Render(name), theme.BadgeMuted.Render("installed"))
				continue
			}
			cmd.Printf("  %s\n", theme.Normal.Render(name))
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogRefresh, "refresh", false, "bypass the cache and fetch the catalog now")
	rootCmd.AddCommand(catalogCmd)
}
