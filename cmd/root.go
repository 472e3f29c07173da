// Package cmd defines the katalog command line: the HTTP server and the
// offline validate/import tools that share the same rule engine.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"katalog/internal/config"
	"katalog/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

var validOutputFormats = []string{"text", "json"}

// errInvalidRecords signals that validation found violations; the details were already printed.
var errInvalidRecords = errors.New("one or more records are invalid")

// runtime carries what PersistentPreRunE resolved for the subcommands.
type runtime struct {
	configFile string
	output     string
	cfg        config.Config
	log        zerolog.Logger
}

// NewRootCmd builds the command tree. Each call returns independent state.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:   "katalog",
		Short: "Product catalog validation and persistence service",
		Long:  `Validates catalog products against the field rules and stores the valid ones, over HTTP (serve) or from files (validate, import).`,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(validOutputFormats, rt.output) {
				return fmt.Errorf("invalid output format: %s (valid: %v)", rt.output, validOutputFormats)
			}

			v := viper.New()
			if rt.configFile != "" {
				v.SetConfigFile(rt.configFile)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&rt.configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVarP(&rt.output, "output", "o", "text", "output format: text or json")

	rootCmd.AddCommand(newServeCmd(rt), newValidateCmd(rt), newImportCmd(rt))
	return rootCmd
}

// Execute runs the root command. Exit code 1 indicates error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// gormLogLevel maps the service log level onto GORM's SQL logger.
func (rt *runtime) gormLogLevel() logger.LogLevel {
	if rt.cfg.LogLevel == "debug" || rt.cfg.LogLevel == "trace" {
		return logger.Info
	}
	return logger.Warn
}
