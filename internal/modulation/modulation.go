// Package modulation generates PRI and PW sequences under the three
// modulation regimes a simulated emitter can use.
//
// Every generated value is clamped at Floor. Draws below the floor are not
// resampled, so for a small mean with a large standard deviation the sample
// mean sits slightly above the configured mean.
package modulation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Floor is the smallest value Generate will ever return.
const Floor = 0.01

// DefaultStd is the standard deviation used when a Spec leaves Std unset.
const DefaultStd = 0.1

// Kind selects the statistical regime of a Spec.
type Kind int

const (
	// Fixed draws every value from a single Gaussian.
	Fixed Kind = iota
	// Staggered cycles through a repeating list of levels plus Gaussian jitter.
	Staggered
	// Jittered draws a uniform base in [Min, Max) plus Gaussian jitter.
	Jittered
)

var kindNames = [...]string{
	Fixed:     "fixed",
	Staggered: "staggered",
	Jittered:  "jittered",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the lower-case names used in configuration files.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown modulation type %q (want fixed, staggered or jittered)", s)
}

// MarshalText lets Kind appear by name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid modulation kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText parses a modulation name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Spec describes how one PRI or PW sequence is generated. Which fields are
// read depends on Kind: Mean for Fixed, Values for Staggered, Min and Max for
// Jittered. Std applies to all three.
type Spec struct {
	Kind   Kind      `json:"type" yaml:"type"`
	Mean   float64   `json:"mean,omitempty" yaml:"mean,omitempty"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Min    float64   `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64   `json:"max,omitempty" yaml:"max,omitempty"`
	Std    *float64  `json:"std,omitempty" yaml:"std,omitempty"`
}

// NewFixed returns a Fixed spec.
func NewFixed(mean, std float64) Spec {
	return Spec{Kind: Fixed, Mean: mean, Std: &std}
}

// NewStaggered returns a Staggered spec cycling through values.
func NewStaggered(values []float64, std float64) Spec {
	v := make([]float64, len(values))
	copy(v, values)
	return Spec{Kind: Staggered, Values: v, Std: &std}
}

// NewJittered returns a Jittered spec over [min, max).
func NewJittered(min, max, std float64) Spec {
	return Spec{Kind: Jittered, Min: min, Max: max, Std: &std}
}

// StdDev returns Std, or DefaultStd when it was not set.
func (s Spec) StdDev() float64 {
	if s.Std == nil {
		return DefaultStd
	}
	return *s.Std
}

// Validate checks the invariants for the spec's Kind.
func (s Spec) Validate() error {
	if s.StdDev() < 0 {
		return fmt.Errorf("%s: std must be non-negative, got %g", s.Kind, s.StdDev())
	}
	switch s.Kind {
	case Fixed:
		return nil
	case Staggered:
		if len(s.Values) == 0 {
			return errors.New("staggered: values must not be empty")
		}
		return nil
	case Jittered:
		if s.Min > s.Max {
			return fmt.Errorf("jittered: min %g exceeds max %g", s.Min, s.Max)
		}
		return nil
	default:
		return fmt.Errorf("invalid modulation kind %d", int(s.Kind))
	}
}

// Generate returns n values drawn according to s using rng. n <= 0 yields an
// empty slice.
func Generate(n int, s Spec, rng *rand.Rand) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []float64{}, nil
	}

	out := make([]float64, n)
	jitter := distuv.Normal{Mu: 0, Sigma: s.StdDev(), Src: rng}

	switch s.Kind {
	case Fixed:
		d := distuv.Normal{Mu: s.Mean, Sigma: s.StdDev(), Src: rng}
		for i := range out {
			out[i] = d.Rand()
		}
	case Staggered:
		for i := range out {
			out[i] = s.Values[i%len(s.Values)]
		}
		for i := range out {
			out[i] += jitter.Rand()
		}
	case Jittered:
		base := distuv.Uniform{Min: s.Min, Max: s.Max, Src: rng}
		for i := range out {
			out[i] = base.Rand()
		}
		for i := range out {
			out[i] += jitter.Rand()
		}
	}

	for i, v := range out {
		if v < Floor {
			out[i] = Floor
		}
	}
	return out, nil
}
