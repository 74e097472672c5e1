// Package timing places an emitter's pulses inside a single burst window.
package timing

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrActivityTooLong is returned when the requested activity duration does
// not fit inside the overall time span.
var ErrActivityTooLong = errors.New("activity duration exceeds time span")

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339))
}

// PickWindow chooses a burst window of length activity whose start is
// uniform over [span.Start, span.End-activity]. The start is truncated to
// whole seconds unless that would move it before span.Start.
func PickWindow(span Window, activity time.Duration, rng *rand.Rand) (Window, error) {
	if activity < time.Second {
		return Window{}, fmt.Errorf("activity duration %s is shorter than one second", activity)
	}
	if !span.End.After(span.Start) {
		return Window{}, fmt.Errorf("empty time span %s", span)
	}
	slack := span.Duration() - activity
	if slack < 0 {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrActivityTooLong, activity, span.Duration())
	}

	offset := distuv.Uniform{Min: 0, Max: slack.Seconds(), Src: rng}.Rand()
	start := span.Start.Add(time.Duration(offset * float64(time.Second))).Truncate(time.Second)
	if start.Before(span.Start) {
		start = span.Start
	}
	return Window{Start: start, End: start.Add(activity)}, nil
}

// AssignTimestamps picks one burst window inside span and draws n
// independent timestamps uniformly from the whole seconds the window
// contains. All n timestamps share the returned window.
func AssignTimestamps(n int, span Window, activity time.Duration, rng *rand.Rand) ([]time.Time, Window, error) {
	w, err := PickWindow(span, activity, rng)
	if err != nil {
		return nil, Window{}, err
	}

	lo := ceilUnix(w.Start)
	width := ceilUnix(w.End) - lo
	out := make([]time.Time, max(n, 0))
	for i := range out {
		out[i] = time.Unix(lo+rng.Int64N(width), 0).UTC()
	}
	return out, w, nil
}

// ceilUnix is the first whole Unix second at or after t.
func ceilUnix(t time.Time) int64 {
	s := t.Unix()
	if t.Nanosecond() > 0 {
		s++
	}
	return s
}
