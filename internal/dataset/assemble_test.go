package dataset

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pdwgen/internal/pdw"
)

func makeRecords(emitter, n int) []pdw.Record {
	base := time.Date(2025, time.November, 19, 0, 0, 0, 0, time.UTC)
	out := make([]pdw.Record, n)
	for i := range out {
		out[i] = pdw.Record{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			EmitterID: emitter,
			Function:  fmt.Sprintf("function %d", emitter),
			RF:        pdw.Valid(9000 + float64(i)),
			PW:        pdw.Valid(1 + float64(i)/100),
			PRI:       pdw.Valid(200 + float64(i)),
			Amplitude: pdw.Valid(10),
			DOA:       pdw.Valid(45),
			Location:  fmt.Sprintf("LOC%d", emitter),
		}
	}
	return out
}

func TestConcatKeepsEmitterOrder(t *testing.T) {
	all := Concat(makeRecords(1, 3), makeRecords(2, 2), nil)
	require.Len(t, all, 5)
	ids := []int{}
	for _, r := range all {
		ids = append(ids, r.EmitterID)
	}
	assert.Equal(t, []int{1, 1, 1, 2, 2}, ids)
}

func TestInjectDuplicates(t *testing.T) {
	t.Parallel()

	base := Concat(makeRecords(1, 1500), makeRecords(2, 850))
	pre := len(base)
	rng := rand.New(rand.NewPCG(1, 2))

	out, n, err := InjectDuplicates(base, 0.01, rng)
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.Equal(t, pre+23, len(out))

	type key struct {
		id int
		ts time.Time
	}
	originals := map[key]pdw.Record{}
	for _, r := range out[:pre] {
		originals[key{r.EmitterID, r.Timestamp}] = r
	}
	dupKeys := map[key]bool{}
	for _, r := range out[pre:] {
		k := key{r.EmitterID, r.Timestamp}
		orig, ok := originals[k]
		require.True(t, ok, "duplicate has no original")
		if diff := cmp.Diff(orig, r); diff != "" {
			t.Errorf("duplicate differs from original (-orig +dup):\n%s", diff)
		}
		assert.False(t, dupKeys[k], "row duplicated twice")
		dupKeys[k] = true
	}
}

func TestInjectDuplicatesSmall(t *testing.T) {
	out, n, err := InjectDuplicates(makeRecords(1, 20), 0.01, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, out, 20)
}

func TestInjectMissing(t *testing.T) {
	t.Parallel()

	records := Concat(makeRecords(1, 1000), makeRecords(2, 1010))
	rng := rand.New(rand.NewPCG(9, 9))

	corrupted, err := InjectMissing(records, 0.02, rng)
	require.NoError(t, err)
	want := SampleCount(len(records), 0.02)
	assert.Equal(t, 40, want)
	assert.Len(t, corrupted, want)

	rows := map[int]bool{}
	for _, c := range corrupted {
		assert.False(t, rows[c.Row], "row corrupted twice")
		rows[c.Row] = true
		assert.False(t, records[c.Row].Get(c.Field).Valid)
	}

	touched := 0
	fields := map[pdw.Field]int{}
	for i, r := range records {
		switch r.MissingCount() {
		case 0:
			assert.False(t, rows[i])
		case 1:
			touched++
			for _, f := range pdw.CorruptibleFields {
				if !r.Get(f).Valid {
					fields[f]++
				}
			}
		default:
			t.Fatalf("row %d lost %d fields", i, r.MissingCount())
		}
	}
	assert.Equal(t, want, touched)
	assert.Greater(t, len(fields), 1, "corruption should spread across columns")
}

func TestRateValidation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	records := makeRecords(1, 10)

	_, _, err := InjectDuplicates(records, 1.0, rng)
	assert.Error(t, err)
	_, err = InjectMissing(records, -0.1, rng)
	assert.Error(t, err)

	corrupted, err := InjectMissing(nil, 0.5, rng)
	require.NoError(t, err)
	assert.Empty(t, corrupted)
}

func TestShuffleIsPermutation(t *testing.T) {
	records := makeRecords(1, 100)
	orig := make([]pdw.Record, len(records))
	copy(orig, records)

	Shuffle(records, rand.New(rand.NewPCG(4, 4)))

	assert.ElementsMatch(t, orig, records)
	assert.NotEqual(t, orig, records)
}

func TestTable(t *testing.T) {
	records := makeRecords(3, 2)
	records[1].Clear(pdw.FieldRF)
	records[0].Clear(pdw.FieldPRI)

	table := Table(records)
	require.Len(t, table, 3)
	assert.Equal(t, pdw.Columns, table[0])

	for _, row := range table[1:] {
		require.Len(t, row, len(pdw.Columns))
	}
	assert.Equal(t, "9000.0", table[1][3])
	assert.Equal(t, "", table[1][5])
	assert.Equal(t, pdw.MissingRF, table[2][3])
}
