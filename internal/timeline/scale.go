// Package timeline implements the temporal event layout engine behind the
// story/narrative timeline: it resolves a visible time range from a set of
// story events, maps story timestamps onto a pixel axis under a selectable
// time scale, clusters colliding events into stacked groups, turns pointer
// gestures into scene reorder requests, and derives per-character arcs from
// the same event stream.
//
// Everything in this package is pure computation except the Relocator and the
// Engine facade, which hold gesture and selection state across calls.
package timeline

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is the calendar unit a TimeScale is expressed in.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
)

var (
	// ErrInvalidScale is returned when a scale would have a non-positive pixel density.
	ErrInvalidScale = errors.New("timeline: pixels per unit must be positive")

	// ErrUnknownUnit is returned for a unit other than days, weeks or months.
	ErrUnknownUnit = errors.New("timeline: unknown time unit")
)

// ParseUnit converts a user-supplied unit name into a Unit. Matching is
// case-insensitive and accepts the singular form.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "days", "day":
		return UnitDays, nil
	case "weeks", "week":
		return UnitWeeks, nil
	case "months", "month":
		return UnitMonths, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	return u == UnitDays || u == UnitWeeks || u == UnitMonths
}

// TimeScale parameterizes every time-to-pixel computation.
// PixelsPerUnit is the number of pixels one day occupies on the axis; the
// unit only selects how axis markers are spaced and labelled.
type TimeScale struct {
	Unit          Unit    `json:"unit" yaml:"unit"`
	Zoom          float64 `json:"zoom" yaml:"zoom"`
	PixelsPerUnit float64 `json:"pixels_per_unit" yaml:"pixels_per_unit"`
}

// NewTimeScale builds a validated TimeScale. A non-positive pixel density is a
// precondition violation and is rejected here rather than allowed to produce
// divide-by-zero geometry later.
func NewTimeScale(unit Unit, zoom, pixelsPerUnit float64) (TimeScale, error) {
	s := TimeScale{Unit: unit, Zoom: zoom, PixelsPerUnit: pixelsPerUnit}
	if err := s.Validate(); err != nil {
		return TimeScale{}, err
	}
	return s, nil
}

// ScaleForZoom derives the pixel density from the configured base density
// multiplied by zoom.
func ScaleForZoom(unit Unit, zoom float64, cfg LayoutConfig) (TimeScale, error) {
	cfg = cfg.withDefaults()
	return NewTimeScale(unit, zoom, cfg.BasePixelsPerUnit*zoom)
}

// Validate checks the scale invariants.
func (s TimeScale) Validate() error {
	if !s.Unit.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, s.Unit)
	}
	if !(s.PixelsPerUnit > 0) {
		return fmt.Errorf("%w (got %g)", ErrInvalidScale, s.PixelsPerUnit)
	}
	return nil
}
