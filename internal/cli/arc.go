package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storyline/internal/store"
	"storyline/internal/timeline"
)

type arcReport struct {
	Character string              `json:"character" yaml:"character"`
	Points    []timeline.ArcPoint `json:"points" yaml:"points"`
	Summary   timeline.ArcSummary `json:"summary" yaml:"summary"`
}

func newArcCmd(a *app) *cobra.Command {
	var events, character, db string
	cmd := &cobra.Command{
		Use:   "arc",
		Short: "Derive a character's arc across the story",
		Long: `Derive one arc point per event whose scene features the character:
narrative phase, emotional state from the scene mood, co-appearing
characters, goals and conflicts.

Scenes come from the events document. With --db the scene store is
consulted first and the document fills in scenes the store lacks.`,
		Example: `  storyline arc --events story.yaml --character Ada
  storyline arc --events story.csv --db storyline.db --character Ada`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(character) == "" {
				return fmt.Errorf("--character is required")
			}
			doc, err := a.loadEvents(events)
			if err != nil {
				return err
			}

			docScenes := doc.SceneMap()
			var scenes timeline.SceneLookup = docScenes
			if db != "" {
				s, err := store.Open(db, a.logger)
				if err != nil {
					return err
				}
				defer s.Close()
				scenes = storeFirst(s, docScenes)
			}

			scale, err := a.cfg.TimeScale()
			if err != nil {
				return err
			}
			engine, err := a.newEngine(scale, timeline.Options{Scenes: scenes})
			if err != nil {
				return err
			}
			engine.SetEvents(doc.Events)

			points := engine.AnalyzeCharacterArc(character)
			report := arcReport{Character: character, Points: points, Summary: timeline.SummarizeArc(points)}
			return render(a.out, a.cfg.Output.Format, report, func(tw *tabwriter.Writer) {
				writeArcTable(tw, report)
			})
		},
	}
	cmd.Flags().StringVarP(&events, "events", "e", "", "Events file (.yaml, .yml, .json or .csv)")
	cmd.Flags().StringVar(&character, "character", "", "Character to trace")
	cmd.Flags().StringVar(&db, "db", "", "Read scenes from this SQLite scene store instead of the events file")
	return cmd
}

func writeArcTable(tw *tabwriter.Writer, r arcReport) {
	fmt.Fprintf(tw, "Character:\t%s\n", r.Character)
	if len(r.Points) == 0 {
		fmt.Fprintln(tw, "No events feature this character.")
		return
	}
	fmt.Fprintf(tw, "Valence:\tmean %.1f, min %d, max %d\n", r.Summary.MeanValence, r.Summary.MinValence, r.Summary.MaxValence)
	phases := make([]string, 0, len(timeline.Phases))
	for _, p := range timeline.Phases {
		if n := r.Summary.Phases[p]; n > 0 {
			phases = append(phases, fmt.Sprintf("%s %d", titleCase(string(p)), n))
		}
	}
	fmt.Fprintf(tw, "Phases:\t%s\n", strings.Join(phases, ", "))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "EVENT\tX\tEMOTION\tWITH\tGOALS\tCONFLICTS\tPHASE")
	for _, p := range r.Points {
		with := make([]string, 0, len(p.Relationships))
		for _, rel := range p.Relationships {
			with = append(with, rel.CharacterID)
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%+d\t%s\t%s\t%s\t%s\n",
			p.EventID, p.Position, p.EmotionalState,
			dash(strings.Join(with, ", ")), dash(strings.Join(p.Goals, "; ")), dash(strings.Join(p.Conflicts, "; ")),
			phaseLabel(p.Phase))
	}
}

// storeFirst looks scenes up in primary, then in fallback.
func storeFirst(primary, fallback timeline.SceneLookup) timeline.SceneLookup {
	return timeline.SceneLookupFunc(func(id string) (timeline.Scene, bool) {
		if scene, ok := primary.Scene(id); ok {
			return scene, true
		}
		return fallback.Scene(id)
	})
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
