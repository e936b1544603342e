package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nexo",
	Short: "Nexo is the terminal client for the Nexo CRM console",
	Long: `A terminal client for the Nexo CRM backend: sign in, watch realtime
notifications, and list recent activity without opening the browser console.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the client config file")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nexo.yaml"
	}
	return home + "/.nexo/config.yaml"
}
