package timing

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	spanStart = time.Date(2025, time.November, 19, 0, 0, 0, 0, time.UTC)
	spanEnd   = time.Date(2025, time.December, 19, 23, 59, 59, 0, time.UTC)
)

func TestAssignTimestampsSingleWindow(t *testing.T) {
	t.Parallel()

	span := Window{Start: spanStart, End: spanEnd}
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, 99))
		stamps, w, err := AssignTimestamps(500, span, time.Hour, rng)
		require.NoError(t, err)
		require.Len(t, stamps, 500)

		assert.Equal(t, time.Hour, w.Duration())
		assert.False(t, w.Start.Before(span.Start), "window starts before span")
		assert.False(t, w.End.After(span.End), "window ends after span")

		earliest, latest := stamps[0], stamps[0]
		for _, ts := range stamps {
			assert.Truef(t, w.Contains(ts), "timestamp %s outside %s", ts, w)
			assert.Zero(t, ts.Nanosecond())
			if ts.Before(earliest) {
				earliest = ts
			}
			if ts.After(latest) {
				latest = ts
			}
		}
		assert.Less(t, latest.Sub(earliest), time.Hour)
	}
}

func TestAssignTimestampsExactSpan(t *testing.T) {
	t.Parallel()

	span := Window{Start: spanStart, End: spanStart.Add(time.Hour)}
	stamps, w, err := AssignTimestamps(50, span, time.Hour, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, span, w)
	for _, ts := range stamps {
		assert.True(t, span.Contains(ts))
	}
}

func TestAssignTimestampsActivityTooLong(t *testing.T) {
	t.Parallel()

	span := Window{Start: spanStart, End: spanStart.Add(30 * time.Minute)}
	_, _, err := AssignTimestamps(10, span, time.Hour, rand.New(rand.NewPCG(1, 2)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrActivityTooLong)
}

func TestPickWindowRejectsBadInput(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	_, err := PickWindow(Window{Start: spanStart, End: spanEnd}, 500*time.Millisecond, rng)
	assert.Error(t, err)

	_, err = PickWindow(Window{Start: spanEnd, End: spanStart}, time.Hour, rng)
	assert.Error(t, err)
}

func TestAssignTimestampsZero(t *testing.T) {
	t.Parallel()

	stamps, _, err := AssignTimestamps(0, Window{Start: spanStart, End: spanEnd}, time.Hour, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Empty(t, stamps)
}

func TestAssignTimestampsFractionalSpanStart(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.January, 1, 0, 0, 0, 900_000_000, time.UTC)
	span := Window{Start: start, End: start.Add(time.Hour)}
	for seed := uint64(0); seed < 200; seed++ {
		stamps, w, err := AssignTimestamps(50, span, time.Hour, rand.New(rand.NewPCG(seed, 7)))
		require.NoError(t, err)
		for _, ts := range stamps {
			require.Truef(t, span.Contains(ts), "timestamp %s outside span %s", ts, span)
			require.Truef(t, w.Contains(ts), "timestamp %s outside window %s", ts, w)
			require.Zero(t, ts.Nanosecond())
		}
	}
}

func TestAssignTimestampsFractionalActivity(t *testing.T) {
	t.Parallel()

	span := Window{Start: spanStart, End: spanStart.Add(time.Minute)}
	stamps, w, err := AssignTimestamps(100, span, 1500*time.Millisecond, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	for _, ts := range stamps {
		assert.Truef(t, w.Contains(ts), "timestamp %s outside window %s", ts, w)
	}
}
