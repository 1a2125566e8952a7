package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vedran/blog"
	"github.com/vedran/blog/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build the site and upload it to a bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("bucket") {
			cfg.Deploy.Bucket, _ = flags.GetString("bucket")
		}
		if flags.Changed("prefix") {
			cfg.Deploy.Prefix, _ = flags.GetString("prefix")
		}

		if skip, _ := flags.GetBool("skip-build"); !skip {
			app := blog.New(cfg, blog.WithLogger(logger))
			err := app.Build(cmd.Context(), cfg.OutputDir)
			app.Close()
			if err != nil {
				return err
			}
		}

		up, err := deploy.New(cmd.Context(), deploy.Config{
			Bucket:    cfg.Deploy.Bucket,
			Region:    cfg.Deploy.Region,
			Endpoint:  cfg.Deploy.Endpoint,
			Prefix:    cfg.Deploy.Prefix,
			AccessKey: cfg.Deploy.AccessKey,
			SecretKey: cfg.Deploy.SecretKey,
		}, logger)
		if err != nil {
			return err
		}
		n, err := up.UploadDir(cmd.Context(), cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d files to %s\n", n, cfg.Deploy.Bucket)
		return nil
	},
}

func init() {
	deployCmd.Flags().String("bucket", "", "target bucket (default from config)")
	deployCmd.Flags().String("prefix", "", "key prefix inside the bucket")
	deployCmd.Flags().Bool("skip-build", false, "upload the existing output directory")
	rootCmd.AddCommand(deployCmd)
}
