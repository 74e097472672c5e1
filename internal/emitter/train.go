package emitter

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/pdwgen/internal/modulation"
	"github.com/banshee-data/pdwgen/internal/pdw"
	"github.com/banshee-data/pdwgen/internal/timing"
)

// TrainParams carries the per-emitter inputs chosen by the caller.
type TrainParams struct {
	Count    int
	Spread   Spread
	Span     timing.Window
	Activity time.Duration
	Location string
}

// Train is the output of one generation pass for a single emitter.
type Train struct {
	Records []pdw.Record
	Window  timing.Window
}

// GenerateTrain produces Count pulses for p. RF, amplitude and DOA are
// independent Gaussian draws around the profile means using the shared
// spread; PRI and PW come from the profile's modulation specs; timestamps
// fall in one burst window of length Activity inside Span. RF and amplitude
// are clamped at modulation.Floor. DOA is left as drawn.
func GenerateTrain(p Profile, tp TrainParams, rng *rand.Rand) (*Train, error) {
	if tp.Count < 0 {
		return nil, fmt.Errorf("emitter %d: negative pulse count %d", p.ID, tp.Count)
	}
	n := tp.Count

	rf := gaussian(n, p.RF, tp.Spread.RF, rng)
	amp := gaussian(n, p.Amplitude, tp.Spread.Amplitude, rng)
	doa := gaussian(n, p.DOA, tp.Spread.DOA, rng)
	clampFloor(rf)
	clampFloor(amp)

	pri, err := modulation.Generate(n, p.PRI, rng)
	if err != nil {
		return nil, fmt.Errorf("emitter %d PRI: %w", p.ID, err)
	}
	pw, err := modulation.Generate(n, p.PW, rng)
	if err != nil {
		return nil, fmt.Errorf("emitter %d PW: %w", p.ID, err)
	}

	stamps, window, err := timing.AssignTimestamps(n, tp.Span, tp.Activity, rng)
	if err != nil {
		return nil, fmt.Errorf("emitter %d timestamps: %w", p.ID, err)
	}

	records := make([]pdw.Record, n)
	for i := range records {
		records[i] = pdw.Record{
			Timestamp: stamps[i],
			EmitterID: p.ID,
			Function:  p.Function,
			RF:        pdw.Valid(rf[i]),
			PW:        pdw.Valid(pw[i]),
			PRI:       pdw.Valid(pri[i]),
			Amplitude: pdw.Valid(amp[i]),
			DOA:       pdw.Valid(doa[i]),
			Location:  tp.Location,
		}
	}
	return &Train{Records: records, Window: window}, nil
}

func gaussian(n int, mean, std float64, rng *rand.Rand) []float64 {
	d := distuv.Normal{Mu: mean, Sigma: std, Src: rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

func clampFloor(vals []float64) {
	for i, v := range vals {
		vals[i] = math.Max(v, modulation.Floor)
	}
}
