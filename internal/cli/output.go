package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"storyline/internal/config"
	"storyline/internal/timeline"
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)

	mainMarker = color.New(color.FgCyan, color.Bold)
	validDrop  = color.New(color.FgGreen, color.Bold)
	badDrop    = color.New(color.FgRed, color.Bold)

	phaseColors = map[timeline.Phase]*color.Color{
		timeline.PhaseIntroduction: color.New(color.FgBlue),
		timeline.PhaseRising:       color.New(color.FgYellow),
		timeline.PhaseClimax:       color.New(color.FgRed, color.Bold),
		timeline.PhaseFalling:      color.New(color.FgMagenta),
		timeline.PhaseResolution:   color.New(color.FgGreen),
	}
)

// resolveFormat turns the configured format into a concrete one. An empty
// format means table when w is a terminal and JSON otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format != config.FormatAuto {
		return format
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return config.FormatTable
	}
	return config.FormatJSON
}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch resolveFormat(format, w) {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

func titleCase(s string) string {
	return titleCaser.String(s)
}

func phaseLabel(p timeline.Phase) string {
	label := titleCase(string(p))
	if c, ok := phaseColors[p]; ok {
		return c.Sprint(label)
	}
	return label
}

func dropLabel(res timeline.DropResult) string {
	label := titleCase(string(res.State))
	if res.Valid() {
		return validDrop.Sprint(label)
	}
	return badDrop.Sprint(label)
}

// pixels formats a pixel quantity with thousands grouping.
func pixels(v float64) string {
	return printer.Sprintf("%d px", int64(v+0.5))
}

func scaleLabel(s timeline.TimeScale) string {
	return fmt.Sprintf("%s x%g (%g px/unit)", titleCase(string(s.Unit)), s.Zoom, s.PixelsPerUnit)
}
