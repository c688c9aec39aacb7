package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	bulkColumn int
	bulkHeader bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Download every URL listed in a tab-separated (or .csv) file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		summary, err := a.recon.Bulk(cmd.Context(), args[0], bulkColumn, bulkHeader)
		if err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		fmt.Printf("downloaded %d, registered %d, skipped %d, errors %d\n",
			summary.Downloaded, summary.Registered, summary.Skipped, len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Println(e)
		}
		if len(summary.Errors) > 0 {
			return fmt.Errorf("bulk: %d row(s) failed", len(summary.Errors))
		}
		return nil
	},
}

func init() {
	bulkCmd.Flags().IntVar(&bulkColumn, "column", 0, "zero-indexed column holding each row's URL")
	bulkCmd.Flags().BoolVar(&bulkHeader, "header", false, "skip the first row as a header")
	rootCmd.AddCommand(bulkCmd)
}
