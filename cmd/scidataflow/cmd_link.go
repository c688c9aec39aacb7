package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/manifest"
)

var (
	linkName string
	linkOnly bool
)

var linkCmd = &cobra.Command{
	Use:   "link <dir> <kind> <token>",
	Short: "Bind a directory to a remote deposition (figshare, zenodo, or staticurl)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		dir, kindArg, token := args[0], args[1], args[2]
		kind := manifest.Kind(kindArg)

		binding, err := a.recon.Link(dir, kind, token, linkName)
		if err != nil {
			return err
		}

		// --link-only creates the binding alone; by default, any files
		// already on disk under dir are registered and marked tracked so
		// the very next push has something to do.
		if !linkOnly {
			if err := autoTrackDir(a, binding.Directory); err != nil {
				return err
			}
		}

		if err := a.save(); err != nil {
			return err
		}
		fmt.Printf("linked %s -> %s (%s, project %s)\n", binding.Directory, kind, binding.Name, binding.ProjectID)
		return nil
	},
}

// autoTrackDir registers every on-disk file under dir that isn't
// already in the manifest, and marks it tracked, so `link` without
// --link-only leaves the directory ready for an immediate push.
func autoTrackDir(a *app, dir string) error {
	untracked, err := a.recon.UntrackedFiles(8)
	if err != nil {
		return err
	}
	var paths []string
	for _, row := range untracked {
		if owner, ok := a.ctx.Collection.BindingFor(row.Path); ok && owner.Directory == dir {
			paths = append(paths, row.Path)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	if _, err := a.recon.Add(paths, false); err != nil {
		return err
	}
	return a.recon.SetTracked(paths, true)
}

func init() {
	linkCmd.Flags().StringVar(&linkName, "name", "", "deposition title (defaults to the directory's base name)")
	linkCmd.Flags().BoolVar(&linkOnly, "link-only", false, "create the binding without auto-tracking files already on disk")
	rootCmd.AddCommand(linkCmd)
}
