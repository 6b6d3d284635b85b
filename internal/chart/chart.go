// Package chart renders weekly payment totals as an HTML line chart.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"trenerka/internal/core"
)

const (
	lineColor = "#8884d8"
	chartID   = "weekly-payments"

	// flaggedSymbol marks weeks holding records whose paid value did not parse.
	flaggedSymbol = "triangle"
)

// Series returns the X labels and Y values of the chart, one point per week
// in the order of summary.Weeks. Weeks with invalid payments get a distinct
// symbol and a name that shows up in the tooltip.
func Series(summary core.WeeklySummary) ([]string, []opts.LineData) {
	labels := make([]string, 0, len(summary.Weeks))
	points := make([]opts.LineData, 0, len(summary.Weeks))
	for _, w := range summary.Weeks {
		labels = append(labels, w.Week)
		p := opts.LineData{Value: w.Total.InexactFloat64()}
		if w.Invalid > 0 {
			p.Name = fmt.Sprintf("некорректная оплата: %d", w.Invalid)
			p.Symbol = flaggedSymbol
			p.SymbolSize = 12
		}
		points = append(points, p)
	}
	return labels, points
}

// Subtitle summarizes the records left out of the totals. It is empty when
// nothing was flagged.
func Subtitle(summary core.WeeklySummary) string {
	if !summary.HasInvalid() {
		return ""
	}
	invalid := 0
	for _, w := range summary.Weeks {
		invalid += w.Invalid
	}
	return fmt.Sprintf("некорректная оплата: %d, пропущено: %d", invalid, summary.Skipped)
}

// New builds the line chart for summary.
func New(summary core.WeeklySummary) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Оплата по неделям",
			Width:     "100%",
			Height:    "300px",
			ChartID:   chartID,
		}),
		charts.WithTitleOpts(opts.Title{Subtitle: Subtitle(summary)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Неделя"}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "₽",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)

	labels, points := Series(summary)
	line.SetXAxis(labels).
		AddSeries("Оплата", points).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: lineColor, Width: 2}),
		)
	return line
}

// Render writes a standalone HTML page containing the chart.
func Render(w io.Writer, summary core.WeeklySummary) error {
	return New(summary).Render(w)
}
