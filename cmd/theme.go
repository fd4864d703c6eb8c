package cmd

import (
	"fmt"

	"github.com/naka-gawa/portfolio-feed/internal/domain"
	"github.com/naka-gawa/portfolio-feed/internal/store"
	"github.com/naka-gawa/portfolio-feed/internal/usecase"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [get|toggle|set <light|dark>]",
	Short: "Reads or changes a stored theme preference",
	Long: `Reads or changes the theme preference kept in the configured store. Without
--visitor the unscoped preference is used.`,
	Args:      cobra.RangeArgs(0, 2),
	ValidArgs: []string{"get", "toggle", "set"},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		visitor, _ := cmd.Flags().GetString("visitor")

		kv, err := store.Open(cmd.Context(), cfg.StoreOptions())
		if err != nil {
			return fmt.Errorf("failed to open preference store: %w", err)
		}
		defer kv.Close()
		service := usecase.NewThemeService(usecase.NewStoredPreferences(kv, visitor, logger), logger)

		action := "get"
		if len(args) > 0 {
			action = args[0]
		}

		var theme domain.Theme
		switch action {
		case "get":
			theme, err = service.Current(cmd.Context())
		case "toggle":
			theme, err = service.Toggle(cmd.Context())
		case "set":
			if len(args) != 2 {
				return fmt.Errorf("set needs a theme: light or dark")
			}
			theme, err = domain.ParseTheme(args[1])
			if err == nil {
				err = service.Set(cmd.Context(), theme)
			}
		default:
			return fmt.Errorf("unknown action %q: must be one of get, toggle, set", action)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.Flags().String("visitor", "", "Visitor id whose preference to use")
}
