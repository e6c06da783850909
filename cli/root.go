package cli

import (
	"fmt"
	"os"

	"github.com/binhbb2204/BookHub/cli/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "bookhub",
	Short:         "BookHub command line client",
	Long:          `Browse, rate and favourite books on a BookHub server.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local configuration",
	Long:  `Create ~/.bookhub/config.yaml with default server settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			printError("Failed to initialize configuration")
			return err
		}
		path, _ := config.GetConfigPath()
		printSuccess("Configuration created")
		fmt.Printf("Config file: %s\n", path)
		fmt.Println("\nNext steps:")
		fmt.Println("  bookhub auth register --username <name> --email <email>")
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(configCmd)
}

func printSuccess(msg string) {
	fmt.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	fmt.Printf("✗ %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("ℹ %s\n", msg)
}
