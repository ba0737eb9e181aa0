package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pricedesk/configs"
	"pricedesk/pkg/log"
)

// Build-time variables (set via -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *configs.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pricedesk",
	Short: "Web front-end for a TF2 trading bot pricelist",
	Long: `pricedesk lets an operator view, add and remove the items a trading
bot buys and sells. Items are added by pasting a marketplace classifieds link.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := configs.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := log.Init(loaded.Log.Level, loaded.Log.Encoding); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: environment only)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pricedesk %s (commit %s)\n", version, commit)
	},
}
