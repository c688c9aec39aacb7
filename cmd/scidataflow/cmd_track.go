package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <paths...>",
	Short: "Mark tracked files as eligible for push/pull",
	Args:  cobra.MinimumNArgs(1),
	RunE:  setTrackedRunner(true),
}

var untrackCmd = &cobra.Command{
	Use:   "untrack <paths...>",
	Short: "Exclude tracked files from push/pull without forgetting them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  setTrackedRunner(false),
}

func setTrackedRunner(tracked bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		if err := a.recon.SetTracked(args, tracked); err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		verb := "tracked"
		if !tracked {
			verb = "untracked"
		}
		for _, p := range args {
			fmt.Printf("%s %s\n", verb, p)
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(trackCmd, untrackCmd)
}
