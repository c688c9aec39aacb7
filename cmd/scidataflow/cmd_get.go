package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getName string

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Download a single file and register it as an untracked manifest entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		f, err := a.recon.Get(cmd.Context(), args[0], "", getName)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		fmt.Printf("fetched %s (%s)\n", f.Path, f.MD5)
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&getName, "name", "", "manifest-relative path to register (defaults to the URL's base name)")
	rootCmd.AddCommand(getCmd)
}
