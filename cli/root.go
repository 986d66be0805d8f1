// Package cli wires the cobra commands of the review bot.
package cli

import (
	"fmt"
	"os"

	"github.com/GbredngleK/NG-Insider-Bot/config"
	"github.com/GbredngleK/NG-Insider-Bot/logging"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command of the bot.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reviewbot",
		Short: "Anonymous teacher review bot",
		Long: `reviewbot collects anonymous teacher reviews over Discord direct messages,
sends them through a moderator queue and publishes approved reviews with vote buttons.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBanCommand(opts))
	cmd.AddCommand(NewUnbanCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the config and builds the logger the flags ask for.
func (o *RootOptions) load() (model.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return model.Config{}, nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return model.Config{}, nil, err
	}
	return cfg, logger, nil
}
