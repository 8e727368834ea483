package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storyline/internal/store"
	"storyline/internal/timeline"
)

type relocateOptions struct {
	events  string
	db      string
	eventID string
	from    string
	to      string
	dropX   float64
	originX float64
}

type relocateReport struct {
	Drop      timeline.DropResult `json:"drop" yaml:"drop"`
	Positions *store.Positions    `json:"positions,omitempty" yaml:"positions,omitempty"`
}

func newRelocateCmd(a *app) *cobra.Command {
	var opts relocateOptions
	cmd := &cobra.Command{
		Use:   "relocate",
		Short: "Drop an event's scene at a new position on a track",
		Long: `Pick up an event from one track and drop it at an x coordinate on
another (or the same) track. The new position is the drop offset from the
track origin in scale units, rounded half up, and is written to the scene
store. Drops on an unknown track, or of events without a scene, are invalid
and change nothing.`,
		Example: `  storyline relocate --events story.yaml --event e1 --from story --to narrative --drop-x 245 --origin-x 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.eventID == "" {
				return fmt.Errorf("--event is required")
			}
			from, err := timeline.ParseTrack(opts.from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			opts.from = string(from)
			doc, err := a.loadEvents(opts.events)
			if err != nil {
				return err
			}
			if opts.db == "" {
				opts.db = a.cfg.Store.Path
			}
			s, err := store.Open(opts.db, a.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := a.relocate(cmd.Context(), s, doc.Events, opts)
			if err != nil {
				return err
			}
			return render(a.out, a.cfg.Output.Format, report, func(tw *tabwriter.Writer) {
				writeRelocateTable(tw, report)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "Events file (.yaml, .yml, .json or .csv)")
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite scene store (default from config)")
	cmd.Flags().StringVar(&opts.eventID, "event", "", "Event to pick up")
	cmd.Flags().StringVar(&opts.from, "from", string(timeline.TrackStory), "Track the event is picked up from: story or narrative")
	cmd.Flags().StringVar(&opts.to, "to", string(timeline.TrackStory), "Track the event is dropped on, matched exactly: any other name is an invalid drop")
	cmd.Flags().Float64Var(&opts.dropX, "drop-x", 0, "Horizontal drop coordinate")
	cmd.Flags().Float64Var(&opts.originX, "origin-x", 0, "Horizontal origin of the target track")
	_ = cmd.MarkFlagRequired("drop-x")
	return cmd
}

// relocate runs one pick-up/drop gesture against the scene store. The target
// track is passed through unparsed: an unknown track is an invalid drop.
func (a *app) relocate(ctx context.Context, s *store.Store, events []timeline.Event, opts relocateOptions) (relocateReport, error) {
	scale, err := a.cfg.TimeScale()
	if err != nil {
		return relocateReport{}, err
	}
	engine, err := a.newEngine(scale, timeline.Options{Scenes: s, Reorderer: s})
	if err != nil {
		return relocateReport{}, err
	}
	engine.SetEvents(events)

	engine.BeginRelocation(opts.eventID, timeline.Track(opts.from))
	res := engine.CompleteRelocation(opts.dropX, opts.originX, timeline.Track(opts.to))
	report := relocateReport{Drop: res}
	if !res.Valid() {
		a.logger.Debug("drop rejected", "event_id", opts.eventID, "to", opts.to)
		return report, nil
	}

	p, err := s.Positions(ctx, res.Request.SceneID)
	if err != nil {
		return relocateReport{}, fmt.Errorf("scene %s was not reordered: %w", res.Request.SceneID, err)
	}
	report.Positions = &p
	return report, nil
}

func writeRelocateTable(tw *tabwriter.Writer, r relocateReport) {
	fmt.Fprintf(tw, "Drop:\t%s\n", dropLabel(r.Drop))
	fmt.Fprintf(tw, "Event:\t%s\n", dash(r.Drop.EventID))
	fmt.Fprintf(tw, "From:\t%s\n", dash(string(r.Drop.FromTrack)))
	if r.Drop.Request == nil {
		return
	}
	fmt.Fprintf(tw, "Scene:\t%s\n", r.Drop.Request.SceneID)
	fmt.Fprintf(tw, "Track:\t%s\n", titleCase(string(r.Drop.Request.Track)))
	fmt.Fprintf(tw, "Position:\t%d\n", r.Drop.Request.NewPosition)
	if r.Positions != nil {
		fmt.Fprintf(tw, "Story position:\t%s\n", position(r.Positions.Story))
		fmt.Fprintf(tw, "Narrative position:\t%s\n", position(r.Positions.Narrative))
	}
}

func position(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
