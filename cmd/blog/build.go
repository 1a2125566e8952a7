package main

import (
	"github.com/spf13/cobra"

	"github.com/vedran/blog"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("out") {
			cfg.OutputDir, _ = cmd.Flags().GetString("out")
		}
		if cmd.Flags().Changed("drafts") {
			cfg.Drafts, _ = cmd.Flags().GetBool("drafts")
		}
		app := blog.New(cfg, blog.WithLogger(logger))
		defer app.Close()
		return app.Build(cmd.Context(), cfg.OutputDir)
	},
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "output directory (default from config, \"public\")")
	buildCmd.Flags().Bool("drafts", false, "include posts marked draft")
	rootCmd.AddCommand(buildCmd)
}
