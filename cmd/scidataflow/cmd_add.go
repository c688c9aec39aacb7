package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addOverwrite bool

var addCmd = &cobra.Command{
	Use:   "add <paths...>",
	Short: "Start tracking one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		added, err := a.recon.Add(args, addOverwrite)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		for _, f := range added {
			fmt.Printf("added %s (%s)\n", f.Path, f.MD5)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().BoolVar(&addOverwrite, "overwrite", false, "replace an existing manifest entry")
	rootCmd.AddCommand(addCmd)
}
