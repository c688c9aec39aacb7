package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/reconcile"
	"github.com/ndlib/scidataflow/transfer"
)

var (
	pullOverwrite bool
	pullURL       string
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download every tracked file from its bound remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		if pullURL != "" {
			f, err := a.recon.Get(cmd.Context(), pullURL, "", "")
			if err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Printf("fetched %s (%s)\n", f.Path, f.MD5)
			return nil
		}

		ctx, cancel := interruptibleContext()
		defer cancel()
		reporter := transfer.NewReporter(trackedFileCount(a))
		results, err := a.recon.Pull(ctx, transfer.DefaultConfig(), reporter, pullOverwrite)
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
	pullCmd.Flags().BoolVar(&pullOverwrite, "overwrite", false, "also replace locally-present files that differ from the remote")
	pullCmd.Flags().StringVar(&pullURL, "url", "", "fetch a single ad-hoc URL instead of reconciling tracked files")
	rootCmd.AddCommand(pullCmd)
}

// finishProgressLine terminates a LineReporter's redrawn-in-place line
// with a newline so the following result lines start clean; a
// NopReporter (non-terminal stderr) never printed one in the first
// place, so there is nothing to do.
func finishProgressLine(reporter transfer.Reporter) {
	if _, ok := reporter.(*transfer.LineReporter); ok {
		fmt.Fprintln(os.Stderr)
	}
}

// printTransferResults prints one line per completed job and exits
// non-zero if any failed (spec.md §7 "the command exits non-zero if
// any occurred").
func printTransferResults(results []reconcile.TransferResult) error {
	failed := 0
	for _, r := range results {
		switch r.Status {
		case transfer.Done:
			fmt.Printf("%s: %s\n", r.Path, r.Status)
		case transfer.Skipped:
			fmt.Printf("%s: skipped (%s)\n", r.Path, r.SkipReason)
		case transfer.Failed:
			failed++
			fmt.Fprintf(os.Stderr, "%s: failed: %s\n", r.Path, r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", failed, len(results))
	}
	return nil
}
