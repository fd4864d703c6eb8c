package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/naka-gawa/portfolio-feed/internal/server"
	"github.com/naka-gawa/portfolio-feed/internal/store"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the portfolio page over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		prefs, err := store.Open(ctx, cfg.StoreOptions())
		if err != nil {
			return fmt.Errorf("failed to open preference store: %w", err)
		}
		defer prefs.Close()

		loader, err := newFeedLoader(cfg, logger)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:     cfg.ListenAddr,
			AllowAll: cfg.CORSAllowAll,
			Map:      view.DefaultMapSettings(),
			Globe:    view.DefaultGlobeSettings(),
		}, loader, prefs, logger)

		fmt.Fprintf(cmd.OutOrStdout(), "Serving the portfolio of %s on %s\n", cfg.Username, cfg.ListenAddr)
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, overriding listen_addr")
}
