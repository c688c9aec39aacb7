package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <paths...>",
	Short: "Recompute digests for already-tracked files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		updated, err := a.recon.Update(args)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		for _, f := range updated {
			fmt.Printf("updated %s (%s)\n", f.Path, f.MD5)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
