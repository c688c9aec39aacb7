package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndlib/scidataflow/config"
)

var (
	configName        string
	configEmail       string
	configAffiliation string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or update the user config used for remote attribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadUserConfig()
		if err != nil {
			return err
		}
		changed := false
		if cmd.Flags().Changed("name") {
			cfg.Name = configName
			changed = true
		}
		if cmd.Flags().Changed("email") {
			cfg.Email = configEmail
			changed = true
		}
		if cmd.Flags().Changed("affiliation") {
			cfg.Affiliation = configAffiliation
			changed = true
		}
		if changed {
			if err := config.SaveUserConfig(cfg); err != nil {
				return err
			}
		}
		fmt.Printf("name: %s\nemail: %s\naffiliation: %s\n", cfg.Name, cfg.Email, cfg.Affiliation)
		return nil
	},
}

func init() {
	configCmd.Flags().StringVar(&configName, "name", "", "attribution name")
	configCmd.Flags().StringVar(&configEmail, "email", "", "attribution email")
	configCmd.Flags().StringVar(&configAffiliation, "affiliation", "", "attribution affiliation")
	rootCmd.AddCommand(configCmd)
}
