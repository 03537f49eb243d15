// Package render draws the chart views as SVG or PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/WessleyAI/mpg-dashboard/engine/views"
)

var (
	// ErrNoData is returned for a view that holds its placeholder.
	ErrNoData = errors.New("render: view has no data")
	// ErrUnknownChart is returned for a chart name or format not served.
	ErrUnknownChart = errors.New("render: unknown chart")
)

// Format is an image encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Chart names.
const (
	ChartDistribution = "distribution"
	ChartCylinders    = "cylinders"
	ChartRelation     = "relation"
)

// ParseName splits "distribution.svg" into its chart name and format.
func ParseName(file string) (string, Format, error) {
	name, ext, ok := strings.Cut(file, ".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownChart, file)
	}
	f := Format(strings.ToLower(ext))
	if f != SVG && f != PNG {
		return "", "", fmt.Errorf("%w: format %q", ErrUnknownChart, ext)
	}
	switch name {
	case ChartDistribution, ChartCylinders, ChartRelation:
		return name, f, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Chart renders the named chart of set to w.
func Chart(w io.Writer, name string, set views.Set, f Format) error {
	switch name {
	case ChartDistribution:
		return Distribution(w, set.Distribution, f)
	case ChartCylinders:
		return Cylinders(w, set.Cylinders, f)
	case ChartRelation:
		return Relation(w, set.Relation, f)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}
