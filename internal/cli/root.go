// Package cli provides the command-line interface for restdoc.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/restdoc/internal/config"
	"github.com/example/restdoc/internal/log"
)

// Version is the CLI version, overridable with -ldflags.
var Version = "0.1.0-dev"

// app carries state shared by the subcommands.
type app struct {
	logCfg     *log.Config
	configPath string
	file       *config.Config
	logger     *slog.Logger
}

// Execute creates and runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logCfg: log.NewConfig(), logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:           "restdoc",
		Short:         "Resolve @restdoc annotations from Go doc comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		fmt.Sprintf("path to config file (default: first of %v in the working directory)", config.DefaultFiles))
	a.logCfg.RegisterFlags(rootCmd.PersistentFlags())
	_ = a.logCfg.RegisterCompletions(rootCmd)

	rootCmd.AddCommand(newInspectCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setup loads the config file and builds the logger. Flags given on the
// command line win over file values.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.Find(".")
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.file = cfg

		flags := cmd.Flags()
		if !flags.Changed("log-level") && cfg.Log.Level != "" {
			a.logCfg.Level = cfg.Log.Level
		}
		if !flags.Changed("log-format") && cfg.Log.Format != "" {
			a.logCfg.Format = cfg.Log.Format
		}
	}

	handler, err := a.logCfg.NewHandler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = slog.New(handler)
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}
