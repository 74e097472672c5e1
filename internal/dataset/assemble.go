// Package dataset merges emitter pulse trains into one table and applies the
// deliberate corruption passes: duplicate rows, missing values and a full
// shuffle.
package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/banshee-data/pdwgen/internal/pdw"
)

// ErrSampleExhausted is returned when a rate asks for more distinct rows than
// the dataset holds. Both passes sample without replacement.
var ErrSampleExhausted = errors.New("sample larger than dataset")

// Concat joins the trains in the order given.
func Concat(trains ...[]pdw.Record) []pdw.Record {
	total := 0
	for _, t := range trains {
		total += len(t)
	}
	out := make([]pdw.Record, 0, total)
	for _, t := range trains {
		out = append(out, t...)
	}
	return out
}

// SampleCount is floor(rate * n).
func SampleCount(n int, rate float64) int {
	return int(float64(n) * rate)
}

func sampleIndices(n int, rate float64, rng *rand.Rand) ([]int, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("rate %g outside [0, 1)", rate)
	}
	k := SampleCount(n, rate)
	if k > n {
		return nil, fmt.Errorf("%w: %d of %d", ErrSampleExhausted, k, n)
	}
	if k == 0 {
		return nil, nil
	}
	idx := make([]int, k)
	sampleuv.WithoutReplacement(idx, n, rng)
	return idx, nil
}

// InjectDuplicates appends identical copies of floor(rate*len) distinct rows
// to records and returns the grown slice and the number of copies.
func InjectDuplicates(records []pdw.Record, rate float64, rng *rand.Rand) ([]pdw.Record, int, error) {
	idx, err := sampleIndices(len(records), rate, rng)
	if err != nil {
		return nil, 0, fmt.Errorf("duplicates: %w", err)
	}
	for _, i := range idx {
		records = append(records, records[i])
	}
	return records, len(idx), nil
}

// Corruption records which field of which row was blanked.
type Corruption struct {
	Row   int
	Field pdw.Field
}

// InjectMissing blanks exactly one field, chosen uniformly from
// pdw.CorruptibleFields, in each of floor(rate*len) distinct rows. records is
// modified in place.
func InjectMissing(records []pdw.Record, rate float64, rng *rand.Rand) ([]Corruption, error) {
	idx, err := sampleIndices(len(records), rate, rng)
	if err != nil {
		return nil, fmt.Errorf("missing values: %w", err)
	}
	out := make([]Corruption, 0, len(idx))
	for _, i := range idx {
		f := pdw.CorruptibleFields[rng.IntN(len(pdw.CorruptibleFields))]
		records[i].Clear(f)
		out = append(out, Corruption{Row: i, Field: f})
	}
	return out, nil
}

// Shuffle permutes records uniformly in place.
func Shuffle(records []pdw.Record, rng *rand.Rand) {
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

// Table renders records as a header row followed by one row per record in
// pdw.Columns order.
func Table(records []pdw.Record) [][]string {
	out := make([][]string, 0, len(records)+1)
	header := make([]string, len(pdw.Columns))
	copy(header, pdw.Columns)
	out = append(out, header)
	for _, r := range records {
		out = append(out, r.Row())
	}
	return out
}
