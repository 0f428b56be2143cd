package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"alpha_miner/configs"
)

var rootCmd = &cobra.Command{
	Use:   "submitter",
	Short: "Scan, filter and bulk-submit Brain alphas",
	Long: `Interactive tool that logs into the Brain platform, fetches your alphas,
filters the ones that pass the submission checks and drives the submit
retry loop for the ones you pick.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu()
	},
}

func main() {
	_ = godotenv.Load()
	configs.InitGlobalConfig()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
