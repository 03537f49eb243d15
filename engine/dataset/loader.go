// Package dataset loads the Auto MPG table from an external source, cleans it
// and exposes it as an immutable, index-backed Table.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
	"github.com/WessleyAI/mpg-dashboard/pkg/vehiclenlp"
)

// Column identifiers after normalization.
const (
	colName         = "car_name"
	colMPG          = "mpg"
	colCylinders    = "cylinders"
	colDisplacement = "displacement"
	colHorsepower   = "horsepower"
	colWeight       = "weight"
	colAcceleration = "acceleration"
	colYear         = "model_year"
	colOrigin       = "origin"

	colOrdinal = "__ordinal"
)

var requiredColumns = []string{colMPG, colCylinders, colWeight, colYear, colOrigin}

// Rows missing any of these are discarded rather than imputed.
var completeColumns = []string{colMPG, colWeight, colYear}

var numericColumns = []string{colMPG, colCylinders, colDisplacement, colHorsepower, colWeight, colAcceleration, colYear}

// Columns later converted to int. Values beyond the int32 range are null.
var integralColumns = map[string]bool{colCylinders: true, colYear: true}

// OriginMode records how origin labels were derived.
type OriginMode string

const (
	OriginModeCode OriginMode = "code"
	OriginModeText OriginMode = "text"
)

// Report describes what the loader did to the raw input.
type Report struct {
	Source           string     `json:"source"`
	RawRows          int        `json:"raw_rows"`
	Rows             int        `json:"rows"`
	Dropped          int        `json:"dropped"`
	NullOrigin       int        `json:"null_origin"`
	UnknownCylinders int        `json:"unknown_cylinders"`
	OriginMode       OriginMode `json:"origin_mode"`
}

type frame struct {
	df     dataframe.DataFrame
	report Report
}

type loaded struct {
	table  *Table
	report Report
}

// Load reads src and returns the cleaned table. Any failure, including a
// table left empty after cleaning, wraps domain.ErrDataUnavailable.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Table, Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name := src.Name()

	clean := fn.Pipeline(
		fn.TracedStage("dataset.normalize", fn.Stage[frame, frame](normalizeColumns)),
		fn.TracedStage("dataset.coerce", fn.Stage[frame, frame](coerceNumeric)),
		fn.TracedStage("dataset.drop_incomplete", fn.Stage[frame, frame](dropIncomplete)),
	)
	load := fn.Then(
		fn.TracedStage("dataset.read", fn.Stage[Source, frame](readCSV), attribute.String("source", name)),
		fn.Then(clean, fn.TracedStage("dataset.materialize", materialize(cases.Title(language.Und)))),
	)

	out, err := load(ctx, src).Unwrap()
	if err != nil {
		return nil, Report{Source: name}, domain.Unavailable(name, err)
	}
	if out.table.Empty() {
		return nil, out.report, domain.Unavailable(name, nil)
	}

	r := out.report
	logger.Info("dataset loaded",
		"source", name,
		"raw_rows", r.RawRows,
		"rows", r.Rows,
		"dropped", r.Dropped,
		"origin_mode", r.OriginMode,
	)
	if r.NullOrigin > 0 {
		logger.Warn("records without origin label", "count", r.NullOrigin)
	}
	if r.UnknownCylinders > 0 {
		logger.Warn("records with unparsable cylinder count", "count", r.UnknownCylinders)
	}
	return out.table, r, nil
}

func readCSV(ctx context.Context, src Source) fn.Result[frame] {
	rc, err := src.Open(ctx)
	if err != nil {
		return fn.Err[frame](err)
	}
	defer rc.Close()

	df := dataframe.ReadCSV(rc,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fn.Err[frame](fmt.Errorf("parse csv: %w", df.Err))
	}

	n := df.Nrow()
	ordinals := make([]int, n)
	for i := range ordinals {
		ordinals[i] = i
	}
	df = df.Mutate(series.New(ordinals, series.Int, colOrdinal))
	if df.Err != nil {
		return fn.Err[frame](df.Err)
	}
	return fn.Ok(frame{df: df, report: Report{Source: src.Name(), RawRows: n}})
}

// normalizeName also drops a UTF-8 byte-order mark, which CSV readers leave
// on the first header.
func normalizeName(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func normalizeColumns(_ context.Context, f frame) fn.Result[frame] {
	seen := make(map[string]string)
	for _, name := range f.df.Names() {
		norm := normalizeName(name)
		if prev, dup := seen[norm]; dup {
			return fn.Errf[frame]("duplicate column %q (headers %q and %q)", norm, prev, name)
		}
		seen[norm] = name
	}
	for _, name := range f.df.Names() {
		if norm := normalizeName(name); norm != name {
			f.df = f.df.Rename(norm, name)
		}
	}
	if f.df.Err != nil {
		return fn.Err[frame](f.df.Err)
	}
	present := fn.Set(f.df.Names())
	for _, c := range requiredColumns {
		if _, ok := present[c]; !ok {
			return fn.Errf[frame]("missing required column %q", c)
		}
	}
	return fn.Ok(f)
}

// parseNumber is lenient about surrounding whitespace; anything else that
// does not parse to a finite number is null.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func parseIntegral(s string) float64 {
	v := parseNumber(s)
	if math.Abs(v) > math.MaxInt32 {
		return math.NaN()
	}
	return v
}

func coerceNumeric(_ context.Context, f frame) fn.Result[frame] {
	present := fn.Set(f.df.Names())
	for _, c := range numericColumns {
		if _, ok := present[c]; !ok {
			continue
		}
		parse := parseNumber
		if integralColumns[c] {
			parse = parseIntegral
		}
		vals := fn.Map(f.df.Col(c).Records(), parse)
		f.df = f.df.Mutate(series.New(vals, series.Float, c))
		if f.df.Err != nil {
			return fn.Err[frame](fmt.Errorf("coerce %s: %w", c, f.df.Err))
		}
	}
	return fn.Ok(f)
}

func notNaN(el series.Element) bool { return !math.IsNaN(el.Float()) }

func dropIncomplete(_ context.Context, f frame) fn.Result[frame] {
	for _, c := range completeColumns {
		if f.df.Nrow() == 0 {
			break
		}
		f.df = f.df.Filter(dataframe.F{Colname: c, Comparator: series.CompFunc, Comparando: notNaN})
		if f.df.Err != nil {
			return fn.Err[frame](fmt.Errorf("drop incomplete %s: %w", c, f.df.Err))
		}
	}
	f.report.Dropped = f.report.RawRows - f.df.Nrow()
	return fn.Ok(f)
}

// originMode treats the column as textual when any non-null value fails to
// parse as a number.
func originMode(raw []string, null []bool) OriginMode {
	for i, s := range raw {
		if null[i] || strings.TrimSpace(s) == "" {
			continue
		}
		if math.IsNaN(parseNumber(s)) {
			return OriginModeText
		}
	}
	return OriginModeCode
}

func originLabel(mode OriginMode, raw string, caser cases.Caser) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if mode == OriginModeText {
		return caser.String(raw)
	}
	code := parseNumber(raw)
	if math.IsNaN(code) || code != math.Trunc(code) {
		return ""
	}
	label, _ := domain.OriginLabel(int(code))
	return label
}

func optional(col []float64, i int) *float64 {
	if col == nil || math.IsNaN(col[i]) {
		return nil
	}
	v := col[i]
	return &v
}

func materialize(caser cases.Caser) fn.Stage[frame, loaded] {
	return func(_ context.Context, f frame) fn.Result[loaded] {
		df := f.df
		n := df.Nrow()
		present := fn.Set(df.Names())

		floatCol := func(c string) []float64 {
			if _, ok := present[c]; !ok {
				return nil
			}
			return df.Col(c).Float()
		}
		ordinals, err := df.Col(colOrdinal).Int()
		if err != nil {
			return fn.Err[loaded](fmt.Errorf("ordinals: %w", err))
		}

		var names []string
		var nameNull []bool
		if _, ok := present[colName]; ok {
			names = df.Col(colName).Records()
			nameNull = df.Col(colName).IsNaN()
		}
		originRaw := df.Col(colOrigin).Records()
		originNull := df.Col(colOrigin).IsNaN()
		mode := originMode(originRaw, originNull)

		mpg, weight, year := floatCol(colMPG), floatCol(colWeight), floatCol(colYear)
		cyl := floatCol(colCylinders)
		hp, disp, accel := floatCol(colHorsepower), floatCol(colDisplacement), floatCol(colAcceleration)

		report := f.report
		report.OriginMode = mode
		rows := make([]domain.Vehicle, 0, n)
		for i := 0; i < n; i++ {
			v := domain.Vehicle{
				MPG:          mpg[i],
				Weight:       weight[i],
				ModelYear:    int(math.Round(year[i])),
				Horsepower:   optional(hp, i),
				Displacement: optional(disp, i),
				Acceleration: optional(accel, i),
			}
			if c := cyl[i]; !math.IsNaN(c) && c > 0 && c == math.Trunc(c) {
				v.Cylinders = int(c)
			} else {
				report.UnknownCylinders++
			}
			if !originNull[i] {
				v.OriginCode = strings.TrimSpace(originRaw[i])
				v.Origin = originLabel(mode, originRaw[i], caser)
			}
			if !v.HasOrigin() {
				report.NullOrigin++
			}
			if names != nil && !nameNull[i] {
				v.Name = strings.TrimSpace(names[i])
			}
			if v.Name == "" {
				v.Name = domain.PlaceholderName(ordinals[i])
			}
			v.Make = vehiclenlp.MakeOf(v.Name)

			if err := domain.ValidateVehicle(v); err != nil {
				report.Dropped++
				continue
			}
			rows = append(rows, v)
		}
		report.Rows = len(rows)
		return fn.Ok(loaded{table: NewTable(rows), report: report})
	}
}
