// Package emitter holds the static emitter profiles and the pulse-train
// generator that turns one profile into a sequence of PDW records.
package emitter

import (
	"fmt"

	"github.com/banshee-data/pdwgen/internal/modulation"
)

// Spread holds the standard deviations shared by every emitter for the
// non-modulated features. Emitters with close means overlap because the
// spread is global rather than per profile.
type Spread struct {
	RF        float64 `json:"rf_mhz" yaml:"rf_mhz"`
	Amplitude float64 `json:"amplitude_db" yaml:"amplitude_db"`
	DOA       float64 `json:"doa_deg" yaml:"doa_deg"`
}

// DefaultSpread is 50 MHz, 5 dB and 15 degrees.
var DefaultSpread = Spread{RF: 50.0, Amplitude: 5.0, DOA: 15.0}

// Validate rejects negative spreads.
func (s Spread) Validate() error {
	if s.RF < 0 || s.Amplitude < 0 || s.DOA < 0 {
		return fmt.Errorf("spread values must be non-negative, got %+v", s)
	}
	return nil
}

// Profile is the static signature of one emitter type.
type Profile struct {
	ID        int             `json:"id" yaml:"id"`
	Function  string          `json:"function" yaml:"function"`
	RF        float64         `json:"rf_mhz" yaml:"rf_mhz"`
	Amplitude float64         `json:"amplitude_db" yaml:"amplitude_db"`
	DOA       float64         `json:"doa_deg" yaml:"doa_deg"`
	PRI       modulation.Spec `json:"pri" yaml:"pri"`
	PW        modulation.Spec `json:"pw" yaml:"pw"`
}

// Validate checks the identifier and both modulation specs.
func (p Profile) Validate() error {
	if p.ID < 1 {
		return fmt.Errorf("emitter id must be >= 1, got %d", p.ID)
	}
	if err := p.PRI.Validate(); err != nil {
		return fmt.Errorf("emitter %d PRI: %w", p.ID, err)
	}
	if err := p.PW.Validate(); err != nil {
		return fmt.Errorf("emitter %d PW: %w", p.ID, err)
	}
	return nil
}

// DefaultProfiles returns the ten built-in emitter types. Several pairs sit
// close together in RF and amplitude (1/6, 2/7, 3/9, 4/8, 5/10) so that
// their distributions blend.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			ID: 1, Function: "Medium-Range Surveillance",
			RF: 9200.0, Amplitude: 15.0, DOA: 45.0,
			PRI: modulation.NewFixed(200.0, 5.0),
			PW:  modulation.NewFixed(3.5, 0.5),
		},
		{
			ID: 2, Function: "Short-Range Fire Control/Tracking",
			RF: 10500.0, Amplitude: 8.0, DOA: 110.0,
			PRI: modulation.NewStaggered([]float64{50.0, 75.0, 100.0}, 2.0),
			PW:  modulation.NewFixed(0.8, 0.5),
		},
		{
			ID: 3, Function: "Naval/Ground Surveillance",
			RF: 8100.0, Amplitude: 12.0, DOA: 270.0,
			PRI: modulation.NewJittered(300.0, 500.0, 5.0),
			PW:  modulation.NewFixed(1.5, 0.5),
		},
		{
			ID: 4, Function: "Target Acquisition/Tracking",
			RF: 9800.0, Amplitude: 18.0, DOA: 20.0,
			PRI: modulation.NewFixed(120.0, 5.0),
			PW:  modulation.NewStaggered([]float64{1.0, 2.0, 3.0, 4.0}, 0.5),
		},
		{
			ID: 5, Function: "Air Traffic Control",
			RF: 11200.0, Amplitude: 5.0, DOA: 315.0,
			PRI: modulation.NewJittered(750.0, 850.0, 5.0),
			PW:  modulation.NewStaggered([]float64{0.2, 0.4}, 0.5),
		},
		{
			ID: 6, Function: "Early Warning",
			RF: 9250.0, Amplitude: 16.0, DOA: 10.0,
			PRI: modulation.NewStaggered([]float64{400.0, 450.0}, 5.0),
			PW:  modulation.NewFixed(5.0, 0.5),
		},
		{
			ID: 7, Function: "Target Illumination",
			RF: 10450.0, Amplitude: 7.0, DOA: 190.0,
			PRI: modulation.NewFixed(50.0, 5.0),
			PW:  modulation.NewJittered(1.5, 2.5, 0.5),
		},
		{
			ID: 8, Function: "Medium-Range Search/Ground Mapping",
			RF: 9750.0, Amplitude: 17.0, DOA: 90.0,
			PRI: modulation.NewStaggered([]float64{350.0, 400.0, 450.0}, 5.0),
			PW:  modulation.NewFixed(2.5, 0.5),
		},
		{
			ID: 9, Function: "Coastal Defense",
			RF: 8050.0, Amplitude: 11.0, DOA: 220.0,
			PRI: modulation.NewStaggered([]float64{110.0, 130.0}, 5.0),
			PW:  modulation.NewFixed(1.8, 0.5),
		},
		{
			ID: 10, Function: "Long-Range Tracking/Weather",
			RF: 11150.0, Amplitude: 6.0, DOA: 340.0,
			PRI: modulation.NewFixed(800.0, 5.0),
			PW:  modulation.NewJittered(0.5, 1.5, 0.5),
		},
	}
}
