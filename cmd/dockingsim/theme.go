package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/prefs"
)

func newThemeCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the colour theme",
		ValidArgs: []string{string(prefs.ThemeLight), string(prefs.ThemeDark), "toggle"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				if path = a.v.GetString("prefs_file"); path == "" {
					var err error
					if path, err = prefs.DefaultPath(); err != nil {
						return err
					}
				}
			}
			store := prefs.NewStore(path)

			var theme prefs.Theme
			switch {
			case len(args) == 0:
				p, err := store.Load()
				if err != nil {
					return err
				}
				theme = p.Theme
			case args[0] == "toggle":
				t, err := store.Toggle()
				if err != nil {
					return err
				}
				theme = t
			default:
				t, err := prefs.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := store.SetTheme(t); err != nil {
					return err
				}
				theme = t
			}

			a.log.Debug(cmd.Context(), "theme resolved", logging.String("path", path), logging.String("theme", string(theme)))
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "preferences file (default in the user config directory)")
	return cmd
}
