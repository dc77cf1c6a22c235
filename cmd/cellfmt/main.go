// Package main provides the cellfmt command: format values from the shell,
// inspect parsed format strings, apply column profiles to CSV or XML data,
// and serve the engine as MCP tools over stdio.
package main

import (
	"os"

	"github.com/spf13/cobra"

	cellfmt "github.com/TsubasaBE/go-cellfmt"
	"github.com/TsubasaBE/go-cellfmt/config"
)

var (
	configPath string

	cfg    config.Config
	engine *cellfmt.Engine
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cellfmt",
		Short: "Excel-style conditional cell formatting",
		Long: `cellfmt renders values through Excel-style conditional format strings
such as [>80]"High"[Green];"Low"[Red] and reports the display text and style.`,
		Version:           cellfmt.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (JSON or YAML)")

	rootCmd.AddCommand(newFormatCmd(), newParseCmd(), newRenderCmd(), newServeCmd())
	return rootCmd
}

// setup loads configuration, installs logging and builds the engine shared
// by every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := config.ConfigureLogging(cfg.Logging, cmd.ErrOrStderr())

	tag, err := cfg.Engine.Tag()
	if err != nil {
		return err
	}
	engine = cellfmt.New(
		cellfmt.WithCache(cellfmt.NewCache(cfg.Engine.CacheSize)),
		cellfmt.WithLocale(tag),
		cellfmt.WithLogger(logger),
	)
	return nil
}
