package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/WessleyAI/mpg-dashboard/engine/dashboard"
	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
	"github.com/WessleyAI/mpg-dashboard/engine/render"
	"github.com/WessleyAI/mpg-dashboard/engine/views"
	"github.com/WessleyAI/mpg-dashboard/pkg/metrics"
	"github.com/WessleyAI/mpg-dashboard/pkg/mid"
)

type server struct {
	cfg    Config
	dash   *dashboard.Dashboard
	panels *dashboard.Panels
	reg    *metrics.Registry
	report dataset.Report
	logger *slog.Logger
}

// newServer builds the dashboard over tbl and evaluates the default
// selection so the first page is complete.
func newServer(ctx context.Context, tbl *dataset.Table, report dataset.Report, cfg Config, logger *slog.Logger) (*server, error) {
	reg := metrics.New()
	d := dashboard.New(tbl, logger)
	s := &server{
		cfg:    cfg,
		dash:   d,
		panels: dashboard.NewPanels(d),
		reg:    reg,
		report: report,
		logger: logger,
	}
	dashboard.NewStats(reg, d)
	if _, err := d.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial refresh: %w", err)
	}
	return s, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /charts/{name}", s.handleChart)
	mux.HandleFunc("GET /api/domains", s.handleDomains)
	mux.HandleFunc("GET /api/selection", s.handleGetSelection)
	mux.HandleFunc("PUT /api/selection", s.handlePutSelection)
	mux.HandleFunc("PUT /api/selection/{control}", s.handlePutControl)
	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", s.reg.Handler())

	return mid.Chain(mux,
		mid.Recover(s.logger),
		mid.Logger(s.logger),
		mid.OTel("mpg-dashboard"),
		mid.CORS(s.cfg.CORSOrigin),
		s.countRequests,
		mid.RateLimit(s.cfg.RateLimit, s.cfg.RateBurst),
		mid.Gzip(1024),
	)
}

// countRequests counts responses by status code and times them.
func (s *server) countRequests(next http.Handler) http.Handler {
	latency := s.reg.Histogram("dashboard_http_request_seconds", "HTTP request latency.", nil)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		latency.Since(start)
		s.reg.Counter(metrics.WithLabels("dashboard_http_requests_total", "code", strconv.Itoa(rec.code)), "HTTP responses by status code.").Inc()
	})
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	c.code = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *codeRecorder) Unwrap() http.ResponseWriter { return c.ResponseWriter }

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isValidation(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}

// --- Handlers ---

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rows":   s.dash.Table().Len(),
	})
}

// DomainsResponse is the body of GET /api/domains.
type DomainsResponse struct {
	Domain  filter.Domain    `json:"domain"`
	Default filter.Selection `json:"default"`
	Report  dataset.Report   `json:"report"`
}

func (s *server) handleDomains(w http.ResponseWriter, _ *http.Request) {
	d := s.dash.Domain()
	writeJSON(w, http.StatusOK, DomainsResponse{Domain: d, Default: filter.Default(d), Report: s.report})
}

func (s *server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Selection())
}

// SelectionResponse is the body returned after a selection change.
type SelectionResponse struct {
	Selection filter.Selection `json:"selection"`
	Revision  uint64           `json:"revision"`
	Rows      int              `json:"rows"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var sel filter.Selection
	if err := decodeBody(w, r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rc, err := s.dash.Apply(r.Context(), sel)
	s.writeRecompute(w, rc, err)
}

// handlePutControl changes a single control: origins takes a JSON array of
// labels, cylinders an array of counts and years a {"min","max"} object.
func (s *server) handlePutControl(w http.ResponseWriter, r *http.Request) {
	var (
		rc  dashboard.Recompute
		err error
	)
	switch r.PathValue("control") {
	case "origins":
		var origins []string
		if err = decodeBody(w, r, &origins); err == nil {
			rc, err = s.dash.SetOrigins(r.Context(), origins)
		}
	case "cylinders":
		var cylinders []int
		if err = decodeBody(w, r, &cylinders); err == nil {
			rc, err = s.dash.SetCylinders(r.Context(), cylinders)
		}
	case "years":
		var years filter.YearRange
		if err = decodeBody(w, r, &years); err == nil {
			rc, err = s.dash.SetYears(r.Context(), years)
		}
	default:
		writeError(w, http.StatusNotFound, "unknown control")
		return
	}
	if err != nil && !isValidation(err) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writeRecompute(w, rc, err)
}

// writeRecompute answers a selection change with the state that change
// produced.
func (s *server) writeRecompute(w http.ResponseWriter, rc dashboard.Recompute, err error) {
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("apply selection failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{
		Selection: rc.Selection,
		Revision:  rc.Revision,
		Rows:      rc.Rows,
	})
}

func (s *server) handleViews(w http.ResponseWriter, r *http.Request) {
	set := s.panels.Snapshot()
	if strings.Contains(r.Header.Get("Accept"), "application/msgpack") {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(set); err != nil {
			s.logger.Error("encode views", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Write(buf.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// RecordsResponse is the body of GET /api/records.
type RecordsResponse struct {
	Count   int              `json:"count"`
	Records []domain.Vehicle `json:"records"`
}

func (s *server) handleRecords(w http.ResponseWriter, _ *http.Request) {
	rows := s.dash.Filtered().Rows()
	writeJSON(w, http.StatusOK, RecordsResponse{Count: len(rows), Records: rows})
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, format, err := render.ParseName(r.PathValue("name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := render.Chart(&buf, name, s.panels.Snapshot(), format); err != nil {
		if errors.Is(err, render.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.Error("render chart", "chart", name, "err", err)
		http.Error(w, "chart unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// placeholderFor reports whether the named chart currently has no data.
func placeholderFor(set views.Set, name string) bool {
	switch name {
	case render.ChartDistribution:
		return set.Distribution.NoData
	case render.ChartCylinders:
		return set.Cylinders.NoData
	case render.ChartRelation:
		return set.Relation.NoData
	}
	return true
}
