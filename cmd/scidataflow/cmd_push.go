package main

import (
	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/transfer"
)

var pushOverwrite bool

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload every tracked, locally-current file to its bound remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		ctx, cancel := interruptibleContext()
		defer cancel()
		reporter := transfer.NewReporter(trackedFileCount(a))
		results, err := a.recon.Push(ctx, transfer.DefaultConfig(), reporter, pushOverwrite)
		finishProgressLine(reporter)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		return printTransferResults(results)
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushOverwrite, "overwrite", false, "also upload locally-modified files, replacing the remote copy")
	rootCmd.AddCommand(pushCmd)
}
