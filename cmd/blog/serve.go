package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vedran/blog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site, optionally reloading content on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("addr") {
			cfg.Addr, _ = flags.GetString("addr")
		}
		if flags.Changed("watch") {
			cfg.Watch, _ = flags.GetBool("watch")
		}
		if flags.Changed("drafts") {
			cfg.Drafts, _ = flags.GetBool("drafts")
		}

		app := blog.New(cfg, blog.WithLogger(logger))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			app.Close()
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
		return <-errc
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, \":8000\")")
	serveCmd.Flags().BoolP("watch", "w", false, "reload content when files change")
	serveCmd.Flags().Bool("drafts", false, "include posts marked draft")
	rootCmd.AddCommand(serveCmd)
}
