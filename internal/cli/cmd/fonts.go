package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/lacquer/internal/cli/styles"
	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/fonts"
)

var (
	fontSans  string
	fontSerif string
	fontMono  string
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Show font choices and the active override",
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()
		override := application.Engine.FontOverride()

		for _, role := range []entity.FontRole{entity.FontRoleSans, entity.FontRoleSerif, entity.FontRoleMono} {
			cmd.Println(theme.Subtitle.Render(string(role)))
			active := ""
			if override.Enabled {
				active = override.Assignment[role]
			}
			for _, choice := range fonts.ChoicesForRole(role) {
				marker := "  "
				if choice.ID == active {
					marker = theme.Success.Render("* ")
				}
				hosted := theme.Subtle.Render("local")
				if choice.Hosted() {
					hosted = theme.Subtle.Render("hosted")
				}
				cmd.Printf("%s%s %s %s\n", marker, theme.Normal.Render(choice.Label), theme.Subtle.Render("("+choice.ID+")"), hosted)
			}
		}
		return nil
	},
}

var fontsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Override the current skin's fonts per role",
	Long: `Override the fonts the active skin assigns. Roles left unset keep the
skin's own choice.

Examples:
  lacquer fonts set --sans fira-sans
  lacquer fonts set --sans inter --mono fira-code`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()

		assignment := make(map[entity.FontRole]string)
		for role, id := range map[entity.FontRole]string{
			entity.FontRoleSans:  fontSans,
			entity.FontRoleSerif: fontSerif,
			entity.FontRoleMono:  fontMono,
		} {
			if id == "" {
				continue
			}
			if _, ok := fonts.Lookup(id); !ok {
				cmd.PrintErrln(theme.Error.Render("unknown font id: " + id))
				return cmd.Help()
			}
			assignment[role] = id
		}
		if len(assignment) == 0 {
			return cmd.Help()
		}

		override := application.Engine.FontOverride()
		if override.Assignment == nil {
			override.Assignment = make(map[entity.FontRole]string)
		}
		for role, id := range assignment {
			override.Assignment[role] = id
		}
		override.Enabled = true

		if err := application.Engine.SetFontOverride(application.Ctx, override); err != nil {
			return err
		}
		cmd.Println(theme.Success.Render("font override saved"))
		return nil
	},
}

var fontsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the font override",
	RunE: func(cmd *cobra.Command, _ []string) error {
		theme := styles.NewTheme()

		if err := application.Engine.SetFontOverride(application.Ctx, entity.FontOverride{}); err != nil {
			return err
		}
		cmd.Println(theme.Success.Render("font override cleared"))
		return nil
	},
}

func init() {
	fontsSetCmd.Flags().StringVar(&fontSans, "sans", "", "font id for the sans role")
	fontsSetCmd.Flags().StringVar(&fontSerif, "serif", "", "font id for the serif role")
	fontsSetCmd.Flags().StringVar(&fontMono, "mono", "", "font id for the mono role")
	fontsCmd.AddCommand(fontsSetCmd, fontsClearCmd)
	rootCmd.AddCommand(fontsCmd)
}
