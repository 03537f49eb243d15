package render

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/WessleyAI/mpg-dashboard/engine/views"
)

var (
	seaGreen   = drawing.ColorFromHex("2E8B57")
	darkOrange = drawing.ColorFromHex("FF8C00")
)

// Series colors for the relation chart, assigned in series order.
var palette = []drawing.Color{
	drawing.ColorFromHex("4F46E5"),
	drawing.ColorFromHex("10B981"),
	drawing.ColorFromHex("F59E0B"),
	drawing.ColorFromHex("EF4444"),
	drawing.ColorFromHex("8B5CF6"),
	drawing.ColorFromHex("06B6D4"),
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

// valueRange pads top so the tallest bar does not touch the frame.
func valueRange(top float64) *chart.ContinuousRange {
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: top * 1.1}
}

// Distribution draws the MPG histogram (450x300).
func Distribution(w io.Writer, h views.Histogram, f Format) error {
	if h.NoData || len(h.Bins) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(h.Bins))
	var tallest float64
	for i, b := range h.Bins {
		label := ""
		if i%4 == 0 {
			label = strconv.FormatFloat(b.Lo, 'f', 1, 64)
		}
		bars[i] = chart.Value{Value: float64(b.Count), Label: label, Style: barStyle(seaGreen)}
		tallest = math.Max(tallest, float64(b.Count))
	}
	bc := chart.BarChart{
		Title:      "Fuel efficiency distribution (MPG)",
		Width:      450,
		Height:     300,
		BarWidth:   16,
		BarSpacing: 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis:      chart.YAxis{Name: "Count", Range: valueRange(tallest)},
		Bars:       bars,
	}
	if err := bc.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render distribution: %w", err)
	}
	return nil
}

// Cylinders draws mean MPG per cylinder count (450x300).
func Cylinders(w io.Writer, s views.BarSeries, f Format) error {
	if s.NoData || len(s.Bars) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(s.Bars))
	var tallest float64
	for i, b := range s.Bars {
		bars[i] = chart.Value{Value: b.MeanMPG, Label: strconv.Itoa(b.Cylinders), Style: barStyle(darkOrange)}
		tallest = math.Max(tallest, b.MeanMPG)
	}
	bc := chart.BarChart{
		Title:      "Average MPG by cylinder count",
		Width:      450,
		Height:     300,
		BarWidth:   50,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis:      chart.YAxis{Name: "MPG", Range: valueRange(tallest)},
		Bars:       bars,
	}
	if err := bc.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render cylinders: %w", err)
	}
	return nil
}

func pointStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    c.WithAlpha(178),
	}
}

// span returns a range around xs that is never zero-width.
func span(xs []float64) *chart.ContinuousRange {
	lo, hi := slices.Min(xs), slices.Max(xs)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// Relation draws weight against MPG, one point series per origin (900x400).
func Relation(w io.Writer, s views.Scatter, f Format) error {
	if s.NoData || len(s.Series) == 0 {
		return ErrNoData
	}
	var allX, allY []float64
	series := make([]chart.Series, 0, len(s.Series))
	for i, group := range s.Series {
		xs := make([]float64, len(group.Points))
		ys := make([]float64, len(group.Points))
		for j, p := range group.Points {
			xs[j], ys[j] = p.Weight, p.MPG
		}
		allX = append(allX, xs...)
		allY = append(allY, ys...)
		name := group.Origin
		if name == "" {
			name = "Unknown"
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(palette[i%len(palette)]),
		})
	}
	if len(allX) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Title:      "Car weight vs fuel efficiency (MPG)",
		Width:      900,
		Height:     400,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 16, Right: 12, Bottom: 12}},
		XAxis:      chart.XAxis{Name: "Weight", Range: span(allX)},
		YAxis:      chart.YAxis{Name: "MPG", Range: span(allY)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render relation: %w", err)
	}
	return nil
}
