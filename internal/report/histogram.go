package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pdwgen/internal/pdw"
)

// HistogramBins is the bin count of the PRI histogram.
const HistogramBins = 60

// SavePRIHistogram writes a histogram of every present PRI value to path. The
// image format follows the extension (.png, .svg, .pdf).
func SavePRIHistogram(path string, records []pdw.Record) error {
	values := make(plotter.Values, 0, len(records))
	for _, r := range records {
		if r.PRI.Valid {
			values = append(values, r.PRI.Float64)
		}
	}
	if len(values) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("PRI distribution (%d pulses)", len(values))
	p.X.Label.Text = "PRI (us)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(values, HistogramBins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram %s: %w", path, err)
	}
	return nil
}
