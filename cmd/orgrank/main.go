// orgrank serves ranked organization search over HTTP and from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/config"
	logpkg "github.com/kailas-cloud/orgrank/internal/logger"
	"github.com/kailas-cloud/orgrank/internal/version"
)

var (
	envName    string
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "orgrank",
	Short:         "Semantic, location-aware search over an organization catalog",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orgrank %s\n", version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "environment name (selects config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "explicit config file path (overrides --env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, searchCmd, validateCmd, versionCmd)
}

// loadConfig reads the config selected by --config or --env.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath) //nolint:wrapcheck // already descriptive
	}
	return config.Load(envName) //nolint:wrapcheck // already descriptive
}

// newLogger builds the process logger. --log-level wins over the config file.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	return logpkg.New(logpkg.Options{ //nolint:wrapcheck // already descriptive
		Env:    envName,
		Level:  level,
		Format: cfg.Logging.Format,
	})
}
