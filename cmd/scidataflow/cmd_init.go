package main

import (
	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty manifest in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := project.Init(".")
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
