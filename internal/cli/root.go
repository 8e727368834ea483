// Package cli implements the storyline command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"storyline/internal/config"
	"storyline/internal/source"
	"storyline/internal/timeline"
)

// version can be overridden at build time via:
// go build -ldflags "-X storyline/internal/cli.version=1.2.3"
var version = "dev"

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	debug   bool
	format  string

	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
}

// Execute runs the root command.
func Execute() error {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		return err
	}
	return nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "storyline",
		Short: "Lay out story events on a time axis",
		Long: `storyline computes the geometry of a story timeline: axis markers,
event positions, stacked event groups and connections. It also derives
character arcs and relocates scenes on the story and narrative tracks.

Events are read from YAML/JSON documents (events:, scenes:) or CSV files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "Configuration file (YAML or TOML)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.format, "format", "", "Output format: table, json or yaml (default: table on a terminal, json otherwise)")

	root.AddCommand(
		newLayoutCmd(a),
		newArcCmd(a),
		newRelocateCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init() error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.format != "" {
		cfg.Output.Format = a.format
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		"file", a.cfgFile, "unit", cfg.Scale.Unit, "zoom", cfg.Scale.Zoom, "format", cfg.Output.Format)
	return nil
}

// loadEvents reads an events file with the configured CSV timestamp column.
func (a *app) loadEvents(path string) (source.Document, error) {
	if path == "" {
		return source.Document{}, fmt.Errorf("--events is required")
	}
	doc, err := source.Load(path, source.Options{TimestampColumn: a.cfg.Columns.TimestampColumn})
	if err != nil {
		return source.Document{}, err
	}
	a.logger.Debug("events loaded", "path", path, "events", len(doc.Events), "scenes", len(doc.Scenes))
	return doc, nil
}

// newEngine builds an engine on the configured scale and layout constants.
func (a *app) newEngine(scale timeline.TimeScale, opts timeline.Options) (*timeline.Engine, error) {
	opts.Layout = a.cfg.Layout
	opts.Logger = a.logger
	return timeline.NewEngine(scale, opts)
}
