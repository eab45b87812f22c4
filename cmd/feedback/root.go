package main

import (
	"fmt"
	"os"

	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Collect category feedback and report on it",
	Long: `feedback runs the collection API, the web UI and the admin tooling of the
feedback collector. Configuration comes from environment variables and an
optional YAML file given with --config.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfigFile(configFile)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
}
