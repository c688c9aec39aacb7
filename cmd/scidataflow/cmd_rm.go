package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <paths...>",
	Short: "Stop tracking one or more files, without touching disk",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		if err := a.recon.Remove(args); err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		for _, p := range args {
			fmt.Printf("removed %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
