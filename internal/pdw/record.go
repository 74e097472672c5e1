// Package pdw defines the pulse descriptor word record and its tabular form.
package pdw

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the textual form of Record.Timestamp in output tables.
const TimestampLayout = "2006-01-02 15:04:05"

// MissingRF marks an absent RF value in the textual RF column. Other numeric
// columns render a missing value as an empty field.
const MissingRF = " "

// Columns is the canonical output column order.
var Columns = []string{
	"Timestamp",
	"Emitter_ID",
	"Radar_Function",
	"RF_MHz",
	"PW_us",
	"PRI_us",
	"Amplitude_dB",
	"DOA_deg",
	"Location_MGRS",
}

// Field identifies one of the numeric measurement fields of a Record.
type Field int

const (
	FieldRF Field = iota
	FieldPW
	FieldPRI
	FieldAmplitude
	FieldDOA
)

// CorruptibleFields lists the fields that may be blanked by missing-value
// injection, in a fixed order.
var CorruptibleFields = []Field{FieldRF, FieldPW, FieldPRI, FieldAmplitude, FieldDOA}

func (f Field) String() string {
	switch f {
	case FieldRF:
		return "RF_MHz"
	case FieldPW:
		return "PW_us"
	case FieldPRI:
		return "PRI_us"
	case FieldAmplitude:
		return "Amplitude_dB"
	case FieldDOA:
		return "DOA_deg"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Record is one emitted pulse. Measurement fields are nullable so that
// missing-value corruption can blank them.
type Record struct {
	Timestamp time.Time
	EmitterID int
	Function  string
	RF        sql.NullFloat64 // MHz
	PW        sql.NullFloat64 // µs
	PRI       sql.NullFloat64 // µs
	Amplitude sql.NullFloat64 // dB
	DOA       sql.NullFloat64 // degrees
	Location  string
}

// Valid wraps v as a present value.
func Valid(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *Record) field(f Field) *sql.NullFloat64 {
	switch f {
	case FieldRF:
		return &r.RF
	case FieldPW:
		return &r.PW
	case FieldPRI:
		return &r.PRI
	case FieldAmplitude:
		return &r.Amplitude
	case FieldDOA:
		return &r.DOA
	default:
		panic(fmt.Sprintf("pdw: unknown field %d", int(f)))
	}
}

// Get returns the value of f.
func (r Record) Get(f Field) sql.NullFloat64 {
	return *r.field(f)
}

// Clear marks f as missing.
func (r *Record) Clear(f Field) {
	*r.field(f) = sql.NullFloat64{}
}

// MissingCount reports how many measurement fields are absent.
func (r Record) MissingCount() int {
	n := 0
	for _, f := range CorruptibleFields {
		if !r.Get(f).Valid {
			n++
		}
	}
	return n
}

// Row renders r in Columns order. RF is always textual: a number or
// MissingRF. Other missing measurements render as empty fields.
func (r Record) Row() []string {
	return []string{
		r.Timestamp.UTC().Format(TimestampLayout),
		strconv.Itoa(r.EmitterID),
		r.Function,
		FormatRF(r.RF),
		formatNullable(r.PW),
		formatNullable(r.PRI),
		formatNullable(r.Amplitude),
		formatNullable(r.DOA),
		r.Location,
	}
}

// FormatRF renders an RF value as text, using MissingRF when absent.
func FormatRF(v sql.NullFloat64) string {
	if !v.Valid {
		return MissingRF
	}
	return FormatFloat(v.Float64)
}

func formatNullable(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return FormatFloat(v.Float64)
}

// FormatFloat renders the shortest decimal that round-trips to v, always
// with a fractional part ("9200.0", not "9200").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
