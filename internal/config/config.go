package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/pdwgen/internal/emitter"
	"github.com/banshee-data/pdwgen/internal/geo"
	"github.com/banshee-data/pdwgen/internal/timing"
)

// ExampleConfigPath is the checked-in example that mirrors Default().
const ExampleConfigPath = "config/pdwgen.example.yaml"

const maxFileSize = 1 * 1024 * 1024 // 1MB

var (
	// ErrActivityExceedsSpan means a burst duration cannot fit in [Start, End].
	ErrActivityExceedsSpan = errors.New("activity duration exceeds dataset time span")
	// ErrRate means a duplicate or missing-value rate is outside [0, 1).
	ErrRate = errors.New("rate must be in [0, 1)")
)

// Config is the complete, immutable input to one generation run.
type Config struct {
	// NumSystems selects the first NumSystems entries of Profiles.
	NumSystems int `json:"num_systems" yaml:"num_systems"`
	// Pulse count per emitter is drawn uniformly from [MinPulses, MaxPulses).
	MinPulses int `json:"min_pulses" yaml:"min_pulses"`
	MaxPulses int `json:"max_pulses" yaml:"max_pulses"`

	Region        geo.BoundingBox `json:"region" yaml:"region"`
	MGRSPrecision int             `json:"mgrs_precision" yaml:"mgrs_precision"`

	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	// ActivityHours is the set of burst lengths, in hours, one of which is
	// chosen per emitter.
	ActivityHours []float64 `json:"activity_hours" yaml:"activity_hours"`

	DuplicateRate float64 `json:"duplicate_rate" yaml:"duplicate_rate"`
	MissingRate   float64 `json:"missing_rate" yaml:"missing_rate"`

	Spread   emitter.Spread    `json:"spread" yaml:"spread"`
	Profiles []emitter.Profile `json:"profiles" yaml:"profiles"`
}

// Default returns the built-in configuration: ten emitters over a month of
// activity in the 24-40N, 118-130E region.
func Default() *Config {
	return &Config{
		NumSystems:    10,
		MinPulses:     100,
		MaxPulses:     2000,
		Region:        geo.BoundingBox{MinLat: 24, MaxLat: 40, MinLon: 118, MaxLon: 130},
		MGRSPrecision: 3,
		Start:         time.Date(2025, time.November, 19, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2025, time.December, 19, 23, 59, 59, 0, time.UTC),
		ActivityHours: []float64{0.5, 1, 2},
		DuplicateRate: 0.01,
		MissingRate:   0.02,
		Spread:        emitter.DefaultSpread,
		Profiles:      emitter.DefaultProfiles(),
	}
}

// Load reads a JSON or YAML file over Default(). Fields omitted from the
// file keep their default values; lists such as profiles are replaced
// wholesale.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Profiles start empty so decoded entries never inherit fields from the
	// defaults they would overwrite.
	cfg := Default()
	cfg.Profiles = nil
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = emitter.DefaultProfiles()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Span is the overall [Start, End) window of the dataset.
func (c *Config) Span() timing.Window {
	return timing.Window{Start: c.Start, End: c.End}
}

// ActivityDurations converts ActivityHours to durations.
func (c *Config) ActivityDurations() []time.Duration {
	out := make([]time.Duration, len(c.ActivityHours))
	for i, h := range c.ActivityHours {
		out[i] = time.Duration(h * float64(time.Hour))
	}
	return out
}

// ActiveProfiles returns the profiles that take part in a run.
func (c *Config) ActiveProfiles() []emitter.Profile {
	n := min(c.NumSystems, len(c.Profiles))
	return c.Profiles[:max(n, 0)]
}

// Validate checks every field a run depends on. Configuration mistakes are
// reported here rather than surfacing as skewed output later.
func (c *Config) Validate() error {
	if len(c.Profiles) == 0 {
		return errors.New("at least one emitter profile is required")
	}
	if c.NumSystems < 1 || c.NumSystems > len(c.Profiles) {
		return fmt.Errorf("num_systems must be between 1 and %d, got %d", len(c.Profiles), c.NumSystems)
	}
	if c.MinPulses < 1 {
		return fmt.Errorf("min_pulses must be >= 1, got %d", c.MinPulses)
	}
	if c.MaxPulses <= c.MinPulses {
		return fmt.Errorf("max_pulses (%d) must exceed min_pulses (%d)", c.MaxPulses, c.MinPulses)
	}

	if err := c.Region.Validate(); err != nil {
		return err
	}
	if c.MGRSPrecision < 0 || c.MGRSPrecision > geo.MaxPrecision {
		return fmt.Errorf("mgrs_precision must be between 0 and %d, got %d", geo.MaxPrecision, c.MGRSPrecision)
	}

	if !c.End.After(c.Start) {
		return fmt.Errorf("end %s must be after start %s", c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	if len(c.ActivityHours) == 0 {
		return errors.New("activity_hours must not be empty")
	}
	span := c.End.Sub(c.Start)
	for _, d := range c.ActivityDurations() {
		if d < time.Second {
			return fmt.Errorf("activity duration %s must be at least one second", d)
		}
		if d > span {
			return fmt.Errorf("%w: %s > %s", ErrActivityExceedsSpan, d, span)
		}
	}

	if c.DuplicateRate < 0 || c.DuplicateRate >= 1 {
		return fmt.Errorf("%w: duplicate_rate %g", ErrRate, c.DuplicateRate)
	}
	if c.MissingRate < 0 || c.MissingRate >= 1 {
		return fmt.Errorf("%w: missing_rate %g", ErrRate, c.MissingRate)
	}

	if err := c.Spread.Validate(); err != nil {
		return err
	}
	ids := make(map[int]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate emitter id %d", p.ID)
		}
		ids[p.ID] = true
	}
	return nil
}
