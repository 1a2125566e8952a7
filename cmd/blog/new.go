package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vedran/blog"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a new post under content/blog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, _ := cmd.Flags().GetBool("draft")
		name, err := blog.NewPost(cfg.ContentDir, strings.Join(args, " "), time.Now(), draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", name)
		return nil
	},
}

func init() {
	newCmd.Flags().Bool("draft", false, "mark the post as a draft")
	rootCmd.AddCommand(newCmd)
}
