package timeline

// Layout constants. They are load-bearing for the visual result but arbitrary
// for correctness, so every one of them can be overridden via LayoutConfig.
const (
	// DefaultClusterTolerance is the pixel distance below which an event joins
	// an existing group instead of opening a new one.
	DefaultClusterTolerance = 50

	// DefaultRowHeight is the vertical offset between stacked members of a group.
	DefaultRowHeight = 35

	// DefaultMinTrackWidth keeps short ranges on a usable canvas.
	DefaultMinTrackWidth = 1000

	// DefaultDaysPerMonth is the fixed month length used to space month
	// markers. It is an approximation, not calendar-accurate.
	DefaultDaysPerMonth = 30

	// DefaultMinDurationWidth is the narrowest footprint of an event with a duration.
	DefaultMinDurationWidth = 60

	// DefaultBasePixelsPerUnit is the pixel density of one day at zoom 1.
	DefaultBasePixelsPerUnit = 50
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// ImportanceSizes holds the fixed footprint of an event without a duration,
// one pair per importance level.
type ImportanceSizes struct {
	Critical Size `json:"critical" yaml:"critical" toml:"critical"`
	Major    Size `json:"major" yaml:"major" toml:"major"`
	Normal   Size `json:"normal" yaml:"normal" toml:"normal"`
	Minor    Size `json:"minor" yaml:"minor" toml:"minor"`
}

// LayoutConfig collects the tunable pixel constants of the layout engine.
// Zero fields fall back to the package defaults.
type LayoutConfig struct {
	ClusterTolerance  float64         `json:"cluster_tolerance" yaml:"cluster_tolerance" toml:"cluster_tolerance" split_words:"true"`
	RowHeight         float64         `json:"row_height" yaml:"row_height" toml:"row_height" split_words:"true"`
	MinTrackWidth     float64         `json:"min_track_width" yaml:"min_track_width" toml:"min_track_width" split_words:"true"`
	DaysPerMonth      float64         `json:"days_per_month" yaml:"days_per_month" toml:"days_per_month" split_words:"true"`
	MinDurationWidth  float64         `json:"min_duration_width" yaml:"min_duration_width" toml:"min_duration_width" split_words:"true"`
	BasePixelsPerUnit float64         `json:"base_pixels_per_unit" yaml:"base_pixels_per_unit" toml:"base_pixels_per_unit" split_words:"true"`
	Sizes             ImportanceSizes `json:"sizes" yaml:"sizes" toml:"sizes" ignored:"true"`
}

// DefaultLayoutConfig returns the layout constants the timeline was designed around.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ClusterTolerance:  DefaultClusterTolerance,
		RowHeight:         DefaultRowHeight,
		MinTrackWidth:     DefaultMinTrackWidth,
		DaysPerMonth:      DefaultDaysPerMonth,
		MinDurationWidth:  DefaultMinDurationWidth,
		BasePixelsPerUnit: DefaultBasePixelsPerUnit,
		Sizes: ImportanceSizes{
			Critical: Size{Width: 200, Height: 80},
			Major:    Size{Width: 160, Height: 64},
			Normal:   Size{Width: 120, Height: 48},
			Minor:    Size{Width: 90, Height: 36},
		},
	}
}

// withDefaults fills every zero field from DefaultLayoutConfig.
func (c LayoutConfig) withDefaults() LayoutConfig {
	def := DefaultLayoutConfig()
	if c.ClusterTolerance <= 0 {
		c.ClusterTolerance = def.ClusterTolerance
	}
	if c.RowHeight <= 0 {
		c.RowHeight = def.RowHeight
	}
	if c.MinTrackWidth <= 0 {
		c.MinTrackWidth = def.MinTrackWidth
	}
	if c.DaysPerMonth <= 0 {
		c.DaysPerMonth = def.DaysPerMonth
	}
	if c.MinDurationWidth <= 0 {
		c.MinDurationWidth = def.MinDurationWidth
	}
	if c.BasePixelsPerUnit <= 0 {
		c.BasePixelsPerUnit = def.BasePixelsPerUnit
	}
	c.Sizes.Critical = sizeOr(c.Sizes.Critical, def.Sizes.Critical)
	c.Sizes.Major = sizeOr(c.Sizes.Major, def.Sizes.Major)
	c.Sizes.Normal = sizeOr(c.Sizes.Normal, def.Sizes.Normal)
	c.Sizes.Minor = sizeOr(c.Sizes.Minor, def.Sizes.Minor)
	return c
}

func sizeOr(s, fallback Size) Size {
	if s.Width <= 0 || s.Height <= 0 {
		return fallback
	}
	return s
}
