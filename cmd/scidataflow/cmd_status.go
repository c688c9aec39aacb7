package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/reconcile"
)

var (
	statusRemotes bool
	statusLong    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local and (optionally) remote state of every tracked file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		rows, err := a.recon.Status(statusRemotes)
		if err != nil {
			return err
		}
		untracked, err := a.recon.UntrackedFiles(8)
		if err != nil {
			return err
		}
		all := append(rows, untracked...)
		if statusLong {
			printStatusLong(all, statusRemotes)
			return nil
		}
		printStatus(all, statusRemotes)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusRemotes, "remotes", false, "also query bound remotes for each file's state")
	statusCmd.Flags().BoolVarP(&statusLong, "long", "l", false, "also show size and modified time for each file")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(rows []reconcile.FileStatus, withRemotes bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, row := range rows {
		local := string(row.Local)
		if row.Local == reconcile.LocalModified && row.PriorMD5 != "" {
			local = fmt.Sprintf("%s (%s -> %s)", local, row.PriorMD5, row.MD5)
		}
		tracked := "untracked"
		if row.Tracked {
			tracked = "tracked"
		}
		if !withRemotes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Path, local, tracked, row.MD5)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Path, local, tracked, string(row.Remote), row.MD5)
	}
}

// printStatusLong adds size and modified-time columns to the bare
// status table, the way bendo's `-longV` listing supplements a bare
// file list with stat detail.
func printStatusLong(rows []reconcile.FileStatus, withRemotes bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, row := range rows {
		local := string(row.Local)
		if row.Local == reconcile.LocalModified && row.PriorMD5 != "" {
			local = fmt.Sprintf("%s (%s -> %s)", local, row.PriorMD5, row.MD5)
		}
		tracked := "untracked"
		if row.Tracked {
			tracked = "tracked"
		}
		modTime := row.ModTime
		if modTime == "" {
			modTime = "-"
		}
		if !withRemotes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", row.Path, local, tracked, row.Size, modTime, row.MD5)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", row.Path, local, tracked, string(row.Remote), row.Size, modTime, row.MD5)
	}
}
