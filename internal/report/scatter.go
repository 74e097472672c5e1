// Package report renders quick-look charts of a generated dataset: an
// interactive RF/PRI scatter per emitter and a static PRI histogram.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pdwgen/internal/pdw"
)

// ErrNoData is returned when no record carries the values a chart needs.
var ErrNoData = errors.New("no plottable records")

// WriteScatterHTML writes an HTML page plotting RF against PRI, one series
// per emitter. Rows missing either value are skipped.
func WriteScatterHTML(w io.Writer, records []pdw.Record) error {
	series := map[int][]opts.ScatterData{}
	names := map[int]string{}
	points := 0
	for _, r := range records {
		if !r.RF.Valid || !r.PRI.Valid {
			continue
		}
		series[r.EmitterID] = append(series[r.EmitterID], opts.ScatterData{
			Value: []interface{}{r.RF.Float64, r.PRI.Float64},
		})
		names[r.EmitterID] = r.Function
		points++
	}
	if points == 0 {
		return ErrNoData
	}

	ids := make([]int, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "PDW Dataset", Width: "1100px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "RF vs PRI", Subtitle: fmt.Sprintf("emitters=%d pulses=%d", len(ids), points)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "RF (MHz)", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "PRI (us)", NameLocation: "middle", NameGap: 40, Scale: opts.Bool(true)}),
	)
	for _, id := range ids {
		scatter.AddSeries(fmt.Sprintf("%d %s", id, names[id]), series[id],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}
