package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// logger is the process-wide diagnostic logger (SPEC_FULL.md "Ambient
// stack / Logging"): plain result tables still go to stdout via fmt,
// only warnings and verbose diagnostics go through here, gated by
// --verbose (spec.md §7 "verbose details gated behind a log level").
var logger = logrus.New()

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "scidataflow",
	Short:         "Track and synchronize research data files against remote repositories",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")
}

// Execute runs the dispatcher and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return reportAndExit(err)
	}
	return 0
}
