// Package config loads storyline configuration: built-in defaults, then an
// optional YAML or TOML file decoded over them, then STORYLINE_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"storyline/internal/timeline"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "STORYLINE"

// Output formats understood by the CLI.
const (
	FormatAuto  = ""
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ScaleConfig selects the time scale. A zero PixelsPerUnit derives the
// density from layout.base_pixels_per_unit times zoom.
type ScaleConfig struct {
	Unit          string  `yaml:"unit" toml:"unit" split_words:"true"`
	Zoom          float64 `yaml:"zoom" toml:"zoom" split_words:"true"`
	PixelsPerUnit float64 `yaml:"pixels_per_unit" toml:"pixels_per_unit" split_words:"true"`
}

// ColumnsConfig maps CSV headers onto event fields.
type ColumnsConfig struct {
	TimestampColumn string `yaml:"timestamp_column" toml:"timestamp_column" split_words:"true"` // case-insensitive
}

// StoreConfig locates the SQLite scene store.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path" split_words:"true"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format" split_words:"true"` // table, json, yaml; empty picks by terminal
}

// WatchConfig controls layout --watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce" split_words:"true"`
}

// Config is the complete storyline configuration. It maps directly onto
// YAML and TOML files:
//
//	scale:
//	  unit: weeks
//	  zoom: 1.5
//	layout:
//	  cluster_tolerance: 50
//	  row_height: 35
//	store:
//	  path: scenes.db
type Config struct {
	Scale   ScaleConfig           `yaml:"scale" toml:"scale"`
	Layout  timeline.LayoutConfig `yaml:"layout" toml:"layout"`
	Columns ColumnsConfig         `yaml:"columns" toml:"columns"`
	Store   StoreConfig           `yaml:"store" toml:"store"`
	Output  OutputConfig          `yaml:"output" toml:"output"`
	Watch   WatchConfig           `yaml:"watch" toml:"watch"`
}

// Default returns the configuration used when no file is given:
//   - day scale at zoom 1 with the default pixel density
//   - the layout constants of timeline.DefaultLayoutConfig
//   - CSV timestamps read from the "story_time" column
//   - scenes stored in storyline.db
//   - output format picked from the terminal, 300ms watch debounce
func Default() Config {
	return Config{
		Scale: ScaleConfig{
			Unit: string(timeline.UnitDays),
			Zoom: 1,
		},
		Layout:  timeline.DefaultLayoutConfig(),
		Columns: ColumnsConfig{TimestampColumn: "story_time"},
		Store:   StoreConfig{Path: "storyline.db"},
		Output:  OutputConfig{Format: FormatAuto},
		Watch:   WatchConfig{Debounce: 300 * time.Millisecond},
	}
}

// Load builds the configuration from defaults, the optional file at path and
// the environment, then validates it. The file format follows the extension:
// .toml for TOML, anything else for YAML.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("error reading environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) error {
	groups := []struct {
		prefix string
		spec   any
	}{
		{EnvPrefix + "_SCALE", &cfg.Scale},
		{EnvPrefix + "_LAYOUT", &cfg.Layout},
		{EnvPrefix + "_COLUMNS", &cfg.Columns},
		{EnvPrefix + "_STORE", &cfg.Store},
		{EnvPrefix + "_OUTPUT", &cfg.Output},
		{EnvPrefix + "_WATCH", &cfg.Watch},
	}
	for _, g := range groups {
		if err := envconfig.Process(g.prefix, g.spec); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := timeline.ParseUnit(c.Scale.Unit); err != nil {
		errs = append(errs, fmt.Errorf("scale.unit: %w", err))
	}
	if c.Scale.Zoom <= 0 {
		errs = append(errs, fmt.Errorf("scale.zoom must be positive (got %g)", c.Scale.Zoom))
	}
	if c.Scale.PixelsPerUnit < 0 {
		errs = append(errs, fmt.Errorf("scale.pixels_per_unit must not be negative (got %g)", c.Scale.PixelsPerUnit))
	}
	l := c.Layout
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"layout.cluster_tolerance", l.ClusterTolerance},
		{"layout.row_height", l.RowHeight},
		{"layout.min_track_width", l.MinTrackWidth},
		{"layout.days_per_month", l.DaysPerMonth},
		{"layout.min_duration_width", l.MinDurationWidth},
		{"layout.base_pixels_per_unit", l.BasePixelsPerUnit},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative (got %g)", f.name, f.value))
		}
	}
	switch c.Output.Format {
	case FormatAuto, FormatTable, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("output.format must be table, json or yaml (got %q)", c.Output.Format))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative (got %s)", c.Watch.Debounce))
	}
	if strings.TrimSpace(c.Columns.TimestampColumn) == "" {
		errs = append(errs, errors.New("columns.timestamp_column is required"))
	}
	return errors.Join(errs...)
}

// TimeScale builds the validated time scale the configuration describes.
func (c Config) TimeScale() (timeline.TimeScale, error) {
	unit, err := timeline.ParseUnit(c.Scale.Unit)
	if err != nil {
		return timeline.TimeScale{}, err
	}
	if c.Scale.PixelsPerUnit > 0 {
		return timeline.NewTimeScale(unit, c.Scale.Zoom, c.Scale.PixelsPerUnit)
	}
	return timeline.ScaleForZoom(unit, c.Scale.Zoom, c.Layout)
}
