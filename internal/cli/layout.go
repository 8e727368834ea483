package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storyline/internal/timeline"
	"storyline/internal/watch"
)

type layoutOptions struct {
	events string
	unit   string
	zoom   float64
	watch  bool
}

func newLayoutCmd(a *app) *cobra.Command {
	var opts layoutOptions
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute markers, event groups and connections",
		Example: `  storyline layout --events story.yaml
  storyline layout --events story.csv --unit weeks --zoom 2 --format json
  storyline layout --events story.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("unit") {
				a.cfg.Scale.Unit = opts.unit
			}
			if cmd.Flags().Changed("zoom") {
				a.cfg.Scale.Zoom = opts.zoom
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if err := a.runLayout(opts.events); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watchLayout(ctx, opts.events)
		},
	}
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "Events file (.yaml, .yml, .json or .csv)")
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "Time unit: days, weeks or months")
	cmd.Flags().Float64VarP(&opts.zoom, "zoom", "z", 1, "Zoom factor applied to the base pixel density")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Recompute the layout whenever the events file changes")
	return cmd
}

func (a *app) runLayout(path string) error {
	doc, err := a.loadEvents(path)
	if err != nil {
		return err
	}
	scale, err := a.cfg.TimeScale()
	if err != nil {
		return err
	}
	engine, err := a.newEngine(scale, timeline.Options{Scenes: doc.SceneMap()})
	if err != nil {
		return err
	}
	engine.SetEvents(doc.Events)
	layout := engine.Layout()
	return render(a.out, a.cfg.Output.Format, layout, func(tw *tabwriter.Writer) {
		writeLayoutTable(tw, layout)
	})
}

func (a *app) watchLayout(ctx context.Context, path string) error {
	w := watch.New(path, func(string) {
		a.logger.Info("events file changed, recomputing layout", "path", path)
		if err := a.runLayout(path); err != nil {
			a.logger.Error("layout failed", "path", path, "error", err)
		}
	}, watch.WithDebounce(a.cfg.Watch.Debounce), watch.WithLogger(a.logger))
	return w.Run(ctx)
}

func writeLayoutTable(tw *tabwriter.Writer, l timeline.Layout) {
	fmt.Fprintf(tw, "Range:\t%s .. %s (%d days)\n",
		l.Range.Start.Format("2006-01-02"), l.Range.End.Format("2006-01-02"), l.Range.Days())
	fmt.Fprintf(tw, "Scale:\t%s\n", scaleLabel(l.Scale))
	fmt.Fprintf(tw, "Width:\t%s\n", pixels(l.Width))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "X\tMARKER\tMAIN")
	for _, m := range l.Markers {
		main := ""
		if m.IsMain {
			main = mainMarker.Sprint("*")
		}
		fmt.Fprintf(tw, "%.1f\t%s\t%s\n", m.X, m.Label, main)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "GROUP\tX\tROW\tEVENT\tIMPORTANCE\tSIZE\tTITLE")
	for i, g := range l.Groups {
		for _, p := range g.Placements {
			fmt.Fprintf(tw, "%d\t%.1f\t%.0f\t%s\t%s\t%.0fx%.0f\t%s\n",
				i+1, p.X, p.Row, p.Event.ID, titleCase(string(p.Event.Importance)), p.Width, p.Height, p.Event.Title)
		}
	}

	if len(l.Connections) == 0 {
		return
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FROM\tTO\tLABEL")
	for _, c := range l.Connections {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.FromID, c.ToID, strings.TrimSpace(c.Label))
	}
}
