// Package cmd provides the CLI commands for archcost.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"archcost/core/types"
	"archcost/internal/config"
	"archcost/internal/logging"
)

// Version is the tool version
const Version = "0.1.0"

var (
	cfgFile    string
	envFiles   []string
	format     string
	currency   string
	region     string
	noFreeTier bool
	logLevel   string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "archcost",
	Short: "Estimate monthly costs for cloud architectures",
	Long: `archcost prices cloud architectures described in YAML or HCL request files.

It estimates monthly cost with free tier savings, recommends optimizations,
projects cost under growth and proposes architecture variants.

Examples:
  archcost estimate web.yaml
  archcost estimate --format json --currency eur web.hcl
  archcost project --model linear --rate 0.1 --months 24 web.yaml
  archcost catalog lambda`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI. Interrupts cancel running projections.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Sync()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.archcost/config.json)")
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading ARCHCOST_* variables (default .env)")
	flags.StringVarP(&format, "format", "f", "", "output format (table, json)")
	flags.StringVar(&currency, "currency", "", "display currency (USD, EUR, GBP, ...)")
	flags.StringVarP(&region, "region", "r", "", "region code, overrides the request file")
	flags.BoolVar(&noFreeTier, "no-free-tier", false, "disable free tier savings")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(variantsCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// initConfig layers dotenv files, the config file, ARCHCOST_* variables and flags, in that order
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if format != "" {
		cfg.Output.DefaultFormat = format
	}
	if currency != "" {
		cfg.Pricing.DefaultCurrency = types.Currency(strings.ToUpper(currency))
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "archcost version %s\n", Version)
	},
}
