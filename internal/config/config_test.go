package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storyline/internal/timeline"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale.Unit != "days" || cfg.Scale.Zoom != 1 {
		t.Errorf("unexpected default scale %+v", cfg.Scale)
	}
	if cfg.Layout != timeline.DefaultLayoutConfig() {
		t.Errorf("expected default layout, got %+v", cfg.Layout)
	}
	s, err := cfg.TimeScale()
	if err != nil {
		t.Fatalf("TimeScale: %v", err)
	}
	if s.PixelsPerUnit != timeline.DefaultBasePixelsPerUnit {
		t.Errorf("expected %d px per unit, got %g", timeline.DefaultBasePixelsPerUnit, s.PixelsPerUnit)
	}
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "storyline.yaml", `
scale:
  unit: weeks
  pixels_per_unit: 12
layout:
  cluster_tolerance: 80
  sizes:
    critical: {width: 240, height: 90}
output:
  format: json
watch:
  debounce: 1s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale.Unit != "weeks" || cfg.Scale.Zoom != 1 {
		t.Errorf("unexpected scale %+v", cfg.Scale)
	}
	if cfg.Layout.ClusterTolerance != 80 || cfg.Layout.RowHeight != timeline.DefaultRowHeight {
		t.Errorf("expected tolerance override with default row height, got %+v", cfg.Layout)
	}
	if cfg.Layout.Sizes.Critical.Width != 240 || cfg.Layout.Sizes.Minor != timeline.DefaultLayoutConfig().Sizes.Minor {
		t.Errorf("unexpected sizes %+v", cfg.Layout.Sizes)
	}
	if cfg.Output.Format != FormatJSON || cfg.Watch.Debounce != time.Second {
		t.Errorf("unexpected output/watch %+v %+v", cfg.Output, cfg.Watch)
	}

	s, err := cfg.TimeScale()
	if err != nil {
		t.Fatalf("TimeScale: %v", err)
	}
	if s.Unit != timeline.UnitWeeks || s.PixelsPerUnit != 12 {
		t.Errorf("unexpected scale %+v", s)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "storyline.toml", `
[scale]
unit = "months"
zoom = 2.0

[layout]
row_height = 40.0

[store]
path = "/tmp/novel.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale.Unit != "months" || cfg.Layout.RowHeight != 40 || cfg.Store.Path != "/tmp/novel.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	s, err := cfg.TimeScale()
	if err != nil {
		t.Fatalf("TimeScale: %v", err)
	}
	if s.PixelsPerUnit != 2*timeline.DefaultBasePixelsPerUnit {
		t.Errorf("expected zoomed density, got %g", s.PixelsPerUnit)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "storyline.yml", "scale:\n  unit: weeks\n")
	t.Setenv("STORYLINE_SCALE_UNIT", "months")
	t.Setenv("STORYLINE_LAYOUT_ROW_HEIGHT", "22")
	t.Setenv("STORYLINE_STORE_PATH", "env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale.Unit != "months" || cfg.Layout.RowHeight != 22 || cfg.Store.Path != "env.db" {
		t.Errorf("expected env overrides, got scale=%+v row=%g store=%+v", cfg.Scale, cfg.Layout.RowHeight, cfg.Store)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown unit", "scale:\n  unit: years\n", "scale.unit"},
		{"zero zoom", "scale:\n  zoom: 0\n", "scale.zoom"},
		{"negative density", "scale:\n  pixels_per_unit: -1\n", "scale.pixels_per_unit"},
		{"bad format", "output:\n  format: xml\n", "output.format"},
		{"negative layout", "layout:\n  row_height: -5\n", "layout.row_height"},
		{"empty timestamp column", "columns:\n  timestamp_column: ''\n", "columns.timestamp_column"},
		{"malformed yaml", "scale: [unit\n", "error parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
