package report

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoChartData is returned when a report has no guests to plot.
var ErrNoChartData = errors.New("report has no guests to chart")

// RenderArrivalPie draws arrived versus missing guests as a PNG pie chart.
func RenderArrivalPie(w io.Writer, r Report) error {
	if r.TotalGuests <= 0 {
		return ErrNoChartData
	}

	var values []chart.Value
	if r.TotalArrived > 0 {
		values = append(values, chart.Value{Label: fmt.Sprintf("Arrived (%d)", r.TotalArrived), Value: float64(r.TotalArrived)})
	}
	if missing := r.Missing(); missing > 0 {
		values = append(values, chart.Value{Label: fmt.Sprintf("Missing (%d)", missing), Value: float64(missing)})
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Arrivals %s", r.Date),
		Width:  512,
		Height: 512,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render arrival chart: %w", err)
	}
	return nil
}

// RenderTableBars draws one bar per booking with its arrived guest count,
// scaled against the largest booking.
func RenderTableBars(w io.Writer, r Report) error {
	if len(r.Tables) == 0 || r.TotalGuests <= 0 {
		return ErrNoChartData
	}

	maxGuests := 0
	bars := make([]chart.Value, 0, len(r.Tables))
	for _, row := range r.Tables {
		if row.GuestsTotal > maxGuests {
			maxGuests = row.GuestsTotal
		}
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s %d/%d", row.Name, row.GuestsArrived, row.GuestsTotal),
			Value: float64(row.GuestsArrived),
		})
	}

	graph := chart.BarChart{
		Title: "Arrived guests by table",
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:    1024,
		Height:   512,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxGuests)},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render table chart: %w", err)
	}
	return nil
}
