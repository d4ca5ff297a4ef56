// Command vinom-search runs search experiments on partially known grids,
// either from the command line or behind an HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beka-birhanu/vinom-search/config"
	"github.com/beka-birhanu/vinom-search/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envs      config.Config
	appLogger *logrus.Logger
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "vinom-search",
	Short: "Search for a hidden target on a partially known grid",
	Long: `vinom-search runs agents that hunt a hidden target on a grid whose
obstacles are only revealed by moving, and whose examinations can miss.

Settings come from the environment (or a .env file); see config/envs.go.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		envs, err = config.Load()
		if err != nil {
			return err
		}

		level := envs.LogLevel
		if verbose {
			level = logrus.DebugLevel.String()
		}
		appLogger, err = logger.NewWithLevel("APP", config.ColorGreen, level, os.Stderr)
		return err
	},
}

// componentLogger creates the logger of one component at the app's level.
func componentLogger(name, color string) *logrus.Logger {
	l, err := logger.NewWithLevel(name, color, appLogger.GetLevel().String(), os.Stderr)
	if err != nil {
		appLogger.WithError(err).Warn("creating component logger")
		return appLogger
	}
	return l
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step at debug level")

	rootCmd.AddCommand(runCmd, episodeCmd, reportCmd, serveCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
