package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/darianmavgo/geoingest/config"
	"github.com/darianmavgo/geoingest/log/zerolog"
	_ "github.com/darianmavgo/geoingest/sources/all"
)

// app carries what every subcommand needs once the root pre-run has
// loaded the configuration.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger *zerolog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:           "geoingest",
		Short:         "Load tabular open data into a spatial SQL table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "HCL configuration file with database settings and extra datasets")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file with DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME (default .env.local)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level. One of trace, debug, info, warn, error")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newDatasetsCmd(a))
	rootCmd.AddCommand(newSchemaCmd(a))
	rootCmd.AddCommand(newExportConfigCmd(a))
	return rootCmd
}

func (a *app) load() error {
	a.logger = zerolog.NewLogger(&zerolog.Config{
		LogLevel: a.logLevel,
		Out:      a.errOut,
	})
	zerolog.SetGlobalLogger(a.logger)

	if a.configPath == "" {
		a.cfg = config.DefaultConfig()
	} else {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		a.cfg = cfg
	}
	if a.envFile != "" {
		a.cfg.EnvFile = a.envFile
	}
	return nil
}
