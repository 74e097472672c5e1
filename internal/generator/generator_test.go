package generator

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pdwgen/internal/config"
	"github.com/banshee-data/pdwgen/internal/dataset"
	"github.com/banshee-data/pdwgen/internal/monitoring"
	"github.com/banshee-data/pdwgen/internal/testutil"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.NumSystems = 2
	cfg.MinPulses = 10
	cfg.MaxPulses = 11
	cfg.DuplicateRate = 0
	cfg.MissingRate = 0
	return cfg
}

func TestRunTwoEmittersFixedCount(t *testing.T) {
	testutil.QuietLogs(t)

	g, err := New(smallConfig())
	require.NoError(t, err)

	res, err := g.Run(testutil.NewRand(42))
	require.NoError(t, err)

	assert.Equal(t, 20, res.BaseRows)
	assert.Len(t, res.Records, 20)
	assert.Zero(t, res.Duplicates)
	assert.Empty(t, res.Corruptions)
	require.Len(t, res.Emitters, 2)

	locations := map[int]map[string]bool{}
	for _, r := range res.Records {
		assert.Contains(t, []int{1, 2}, r.EmitterID)
		assert.Zero(t, r.MissingCount())
		if locations[r.EmitterID] == nil {
			locations[r.EmitterID] = map[string]bool{}
		}
		locations[r.EmitterID][r.Location] = true
	}
	for id, locs := range locations {
		assert.Len(t, locs, 1, "emitter %d reported from more than one location", id)
	}

	for _, s := range res.Emitters {
		assert.Equal(t, 10, s.Pulses)
		for _, r := range res.Records {
			if r.EmitterID == s.ID {
				assert.True(t, s.Window.Contains(r.Timestamp))
			}
		}
	}
}

func TestRunDefaultRowArithmetic(t *testing.T) {
	testutil.QuietLogs(t)

	g, err := New(config.Default())
	require.NoError(t, err)
	res, err := g.Run(rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)

	sum := 0
	for _, s := range res.Emitters {
		assert.GreaterOrEqual(t, s.Pulses, 100)
		assert.Less(t, s.Pulses, 2000)
		sum += s.Pulses
	}
	assert.Equal(t, sum, res.BaseRows)

	wantDups := dataset.SampleCount(res.BaseRows, 0.01)
	assert.Equal(t, wantDups, res.Duplicates)
	assert.Len(t, res.Records, res.BaseRows+wantDups)
	assert.Len(t, res.Corruptions, dataset.SampleCount(len(res.Records), 0.02))

	missing := 0
	for _, r := range res.Records {
		missing += r.MissingCount()
	}
	assert.Equal(t, len(res.Corruptions), missing)
}

func TestRunDeterministic(t *testing.T) {
	testutil.QuietLogs(t)

	cfg := smallConfig()
	cfg.MaxPulses = 400
	cfg.DuplicateRate = 0.05
	cfg.MissingRate = 0.05

	g, err := New(cfg)
	require.NoError(t, err)

	a, err := g.Run(rand.New(rand.NewPCG(3, 5)))
	require.NoError(t, err)
	b, err := g.Run(rand.New(rand.NewPCG(3, 5)))
	require.NoError(t, err)

	if diff := cmp.Diff(a.Records, b.Records); diff != "" {
		t.Errorf("same seed produced different datasets (-a +b):\n%s", diff)
	}

	c, err := g.Run(rand.New(rand.NewPCG(4, 5)))
	require.NoError(t, err)
	assert.NotEqual(t, a.Records, c.Records)
}

func TestRunEncoderFailure(t *testing.T) {
	testutil.QuietLogs(t)

	boom := errors.New("encoder offline")
	g, err := New(smallConfig(), WithEncoder(func(lat, lon float64, precision int) (string, error) {
		return "", boom
	}))
	require.NoError(t, err)

	_, err = g.Run(rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, boom)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.NumSystems = 0
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRunRecordsMetrics(t *testing.T) {
	testutil.QuietLogs(t)

	c, err := monitoring.NewRunCollector(nil)
	require.NoError(t, err)

	cfg := smallConfig()
	cfg.MissingRate = 0.1
	g, err := New(cfg, WithMetrics(c))
	require.NoError(t, err)
	res, err := g.Run(rand.New(rand.NewPCG(8, 8)))
	require.NoError(t, err)

	for _, s := range res.Emitters {
		got := promtest.ToFloat64(c.PulsesGenerated.WithLabelValues(strconv.Itoa(s.ID), s.Function))
		assert.Equal(t, float64(s.Pulses), got)
	}
	assert.Equal(t, 20.0, promtest.ToFloat64(c.Rows.WithLabelValues("total")))
	assert.Equal(t, 2.0, promtest.ToFloat64(c.Rows.WithLabelValues("corrupted")))
}
