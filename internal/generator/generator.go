// Package generator drives one complete dataset run: locations, per-emitter
// pulse trains, then the assembly and corruption passes.
package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pdwgen/internal/config"
	"github.com/banshee-data/pdwgen/internal/dataset"
	"github.com/banshee-data/pdwgen/internal/emitter"
	"github.com/banshee-data/pdwgen/internal/geo"
	"github.com/banshee-data/pdwgen/internal/monitoring"
	"github.com/banshee-data/pdwgen/internal/pdw"
	"github.com/banshee-data/pdwgen/internal/timing"
)

// EmitterSummary describes what one emitter contributed before corruption.
type EmitterSummary struct {
	ID       int
	Function string
	Pulses   int
	Location string
	Activity time.Duration
	Window   timing.Window
	PRIMean  float64
	PRIStd   float64
	PWMean   float64
	PWStd    float64
}

// Result is the finished, shuffled dataset plus bookkeeping.
type Result struct {
	Records     []pdw.Record
	BaseRows    int
	Duplicates  int
	// Corruptions index rows as they were before the final shuffle.
	Corruptions []dataset.Corruption
	Emitters    []EmitterSummary
}

// Generator holds the immutable configuration and the external geodetic
// encoder.
type Generator struct {
	cfg     *config.Config
	encode  geo.EncodeFunc
	metrics *monitoring.RunCollector
}

// Option customises a Generator.
type Option func(*Generator)

// WithEncoder replaces the grid-reference encoder.
func WithEncoder(f geo.EncodeFunc) Option {
	return func(g *Generator) {
		g.encode = f
	}
}

// WithMetrics records per-emitter and per-stage counts into c.
func WithMetrics(c *monitoring.RunCollector) Option {
	return func(g *Generator) {
		g.metrics = c
	}
}

// New validates cfg and returns a Generator for it.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	g := &Generator{cfg: cfg, encode: geo.Encode}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Run generates one dataset. All randomness is drawn from rng, so equal
// seeds give equal datasets.
func (g *Generator) Run(rng *rand.Rand) (*Result, error) {
	cfg := g.cfg
	profiles := cfg.ActiveProfiles()

	// One fixed location per emitter, drawn before any pulses.
	locations := make(map[int]string, len(profiles))
	for _, p := range profiles {
		loc, err := geo.RandomLocation(cfg.Region, cfg.MGRSPrecision, g.encode, rng)
		if err != nil {
			return nil, fmt.Errorf("emitter %d location: %w", p.ID, err)
		}
		locations[p.ID] = loc
	}

	monitoring.Logf("Generating data:")
	durations := cfg.ActivityDurations()
	trains := make([][]pdw.Record, 0, len(profiles))
	summaries := make([]EmitterSummary, 0, len(profiles))
	for _, p := range profiles {
		n := cfg.MinPulses + rng.IntN(cfg.MaxPulses-cfg.MinPulses)
		monitoring.Logf("  > Emitter %d: generating %d rows.", p.ID, n)

		activity := durations[rng.IntN(len(durations))]
		train, err := emitter.GenerateTrain(p, emitter.TrainParams{
			Count:    n,
			Spread:   cfg.Spread,
			Span:     cfg.Span(),
			Activity: activity,
			Location: locations[p.ID],
		}, rng)
		if err != nil {
			return nil, err
		}
		trains = append(trains, train.Records)
		g.metrics.AddPulses(p.ID, p.Function, len(train.Records))
		summaries = append(summaries, summarise(p, activity, locations[p.ID], train))
	}

	records := dataset.Concat(trains...)
	base := len(records)

	records, dups, err := dataset.InjectDuplicates(records, cfg.DuplicateRate, rng)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Injected %d duplicate rows to mimic multipath.", dups)

	corruptions, err := dataset.InjectMissing(records, cfg.MissingRate, rng)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Corrupted %d rows with missing values to mimic sensor dropouts.", len(corruptions))
	for _, c := range corruptions {
		g.metrics.IncMissing(c.Field.String())
	}
	g.metrics.SetRows(base, dups, len(corruptions), len(records))

	dataset.Shuffle(records, rng)

	return &Result{
		Records:     records,
		BaseRows:    base,
		Duplicates:  dups,
		Corruptions: corruptions,
		Emitters:    summaries,
	}, nil
}

func summarise(p emitter.Profile, activity time.Duration, location string, train *emitter.Train) EmitterSummary {
	pri := make([]float64, len(train.Records))
	pw := make([]float64, len(train.Records))
	for i, r := range train.Records {
		pri[i] = r.PRI.Float64
		pw[i] = r.PW.Float64
	}
	s := EmitterSummary{
		ID:       p.ID,
		Function: p.Function,
		Pulses:   len(train.Records),
		Location: location,
		Activity: activity,
		Window:   train.Window,
	}
	if len(pri) > 1 {
		s.PRIMean, s.PRIStd = stat.MeanStdDev(pri, nil)
		s.PWMean, s.PWStd = stat.MeanStdDev(pw, nil)
	}
	return s
}
