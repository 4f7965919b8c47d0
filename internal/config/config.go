// Package config holds the viewer and layout configuration, loaded from a
// YAML file. Every field has a default so a missing file just means
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bandline/internal/layout"
)

type Config struct {
	Axis     AxisConfig     `yaml:"axis"`
	Geometry GeometryConfig `yaml:"geometry"`
	Render   RenderConfig   `yaml:"render"`
}

type AxisConfig struct {
	// Start/End bound the visible schedule, RFC 3339. Empty means "today"
	// through "today + days".
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	// Days is used when Start/End are empty.
	Days int `yaml:"days"`
	// Tick is the axis resolution (Go duration syntax, e.g. "1h").
	Tick string `yaml:"tick"`
	// RTL flips the reading direction.
	RTL bool `yaml:"rtl"`
	// ExcludeNights removes the given wall-clock range each day, e.g. the
	// non-working 22:00-06:00 stretch. Zero/zero disables it.
	NightStartHour int `yaml:"night_start_hour"`
	NightEndHour   int `yaml:"night_end_hour"`
	// ExcludeWeekends removes Saturdays and Sundays from the axis.
	ExcludeWeekends bool `yaml:"exclude_weekends"`
}

type GeometryConfig struct {
	BandHeight     float64 `yaml:"band_height"`
	BandMargin     float64 `yaml:"band_margin"`
	EdgeMargin     float64 `yaml:"edge_margin"`
	MilestoneWidth float64 `yaml:"milestone_width"`
	// MaxBarWidth truncates extremely wide bars to keep the renderer sane.
	MaxBarWidth float64 `yaml:"max_bar_width"`
}

// Layout converts the configured geometry into the layout engine's terms.
func (g GeometryConfig) Layout() layout.Geometry {
	return layout.Geometry{
		BandHeight:     g.BandHeight,
		BandMargin:     g.BandMargin,
		EdgeMargin:     g.EdgeMargin,
		MilestoneWidth: g.MilestoneWidth,
		MaxBarWidth:    g.MaxBarWidth,
	}
}

type RenderConfig struct {
	// BufferPx extends the virtualization window on every side; 0 disables
	// the tolerance (snapshot/export behavior).
	BufferPx float64 `yaml:"buffer_px"`
	// PxPerHour sets the horizontal zoom.
	PxPerHour float64 `yaml:"px_per_hour"`
}

func Default() Config {
	return Config{
		Axis: AxisConfig{
			Days: 7,
			Tick: "1h",
		},
		Geometry: GeometryConfig{
			BandHeight:     1,
			BandMargin:     0,
			EdgeMargin:     0,
			MilestoneWidth: 1,
			MaxBarWidth:    8000,
		},
		Render: RenderConfig{
			BufferPx:  48,
			PxPerHour: 4,
		},
	}
}

// Load reads path over the defaults. An empty path or missing file returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Geometry.BandHeight <= 0 {
		return fmt.Errorf("config: band_height must be positive")
	}
	if c.Render.PxPerHour <= 0 {
		return fmt.Errorf("config: px_per_hour must be positive")
	}
	if _, err := time.ParseDuration(c.Axis.Tick); err != nil {
		return fmt.Errorf("config: bad tick: %w", err)
	}
	if c.Axis.NightStartHour < 0 || c.Axis.NightStartHour > 24 ||
		c.Axis.NightEndHour < 0 || c.Axis.NightEndHour > 24 {
		return fmt.Errorf("config: night hours must be within 0..24")
	}
	return nil
}

// Window resolves the configured axis date range.
func (c Config) Window(now time.Time) (time.Time, time.Time, error) {
	if c.Axis.Start == "" && c.Axis.End == "" {
		start := now.UTC().Truncate(24 * time.Hour)
		days := c.Axis.Days
		if days <= 0 {
			days = 7
		}
		return start, start.AddDate(0, 0, days), nil
	}
	start, err := time.Parse(time.RFC3339, c.Axis.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: bad axis.start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, c.Axis.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: bad axis.end: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("config: axis.end must be after axis.start")
	}
	return start, end, nil
}

// TickDuration parses the configured tick size.
func (c Config) TickDuration() time.Duration {
	d, err := time.ParseDuration(c.Axis.Tick)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
