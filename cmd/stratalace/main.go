package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratalace/site/internal/config"
	"github.com/stratalace/site/internal/logging"
)

var (
	// Global flags
	addrFlag     string
	logLevelFlag string
	disablePDF   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stratalace",
	Short: "Stratalace marketing site and lead intake",
	Long: `Serves the Stratalace marketing site: services, case studies and the
four-step contact wizard that scores and forwards leads.

Configuration comes from the environment, optionally via a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if addrFlag != "" {
			cfg.Server.Addr = addrFlag
		}
		if logLevelFlag != "" {
			cfg.Log.Level = logLevelFlag
			cfg.Log.Debug = false
		}
		logger, err = logging.New(cfg.Log.EffectiveLevel())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "listen address (overrides ADDR/PORT)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (overrides LOG_LEVEL/DEBUG)")
	serveCmd.Flags().BoolVar(&disablePDF, "disable-pdf", false, "do not offer case study PDF export")

	rootCmd.AddCommand(serveCmd, scoreCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
