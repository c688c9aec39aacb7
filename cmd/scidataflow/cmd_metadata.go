package main

import (
	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/config"
)

var (
	metadataDir         string
	metadataTitle       string
	metadataDescription string
	metadataCreator     string
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Attach title/description/creator metadata to a bound Zenodo deposition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openProject()
		if err != nil {
			return err
		}
		creator := metadataCreator
		if creator == "" {
			cfg, err := config.LoadUserConfig()
			if err != nil {
				return err
			}
			creator = cfg.Name
		}
		return a.recon.Metadata(metadataDir, metadataTitle, metadataDescription, creator)
	},
}

func init() {
	metadataCmd.Flags().StringVar(&metadataDir, "dir", ".", "bound directory whose deposition to update")
	metadataCmd.Flags().StringVar(&metadataTitle, "title", "", "deposition title")
	metadataCmd.Flags().StringVar(&metadataDescription, "description", "", "deposition description")
	metadataCmd.Flags().StringVar(&metadataCreator, "creator", "", "creator name (defaults to the user config's name)")
	rootCmd.AddCommand(metadataCmd)
}
