package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
	"github.com/WessleyAI/mpg-dashboard/engine/views"
)

func testServer(t *testing.T) (*server, http.Handler) {
	t.Helper()
	tbl := dataset.NewTable([]domain.Vehicle{
		{Name: "chevrolet chevelle malibu", Make: "Chevrolet", MPG: 18, Cylinders: 8, Weight: 3504, ModelYear: 70, Origin: domain.OriginUSA},
		{Name: "toyota corolla", Make: "Toyota", MPG: 30, Cylinders: 4, Weight: 2130, ModelYear: 75, Origin: domain.OriginJapan},
		{Name: "ford maverick", Make: "Ford", MPG: 22, Cylinders: 6, Weight: 3139, ModelYear: 72, Origin: domain.OriginUSA},
		{Name: "vw rabbit", Make: "Volkswagen", MPG: 35, Cylinders: 4, Weight: 1985, ModelYear: 80, Origin: domain.OriginEurope},
	})
	cfg := loadConfig()
	cfg.RateLimit = 0
	s, err := newServer(context.Background(), tbl, dataset.Report{Source: "test", RawRows: 4, Rows: 4}, cfg, quiet())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s, s.routes()
}

func do(h http.Handler, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		r.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, h := testServer(t)
	rec := do(h, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["rows"] != float64(4) {
		t.Fatalf("unexpected health %v", resp)
	}
}

func TestPageDefault(t *testing.T) {
	_, h := testServer(t)
	rec := do(h, "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Average MPG", "26.25", "Number of cars",
		`src="/charts/distribution.svg?rev=1"`,
		`src="/charts/cylinders.svg?rev=1"`,
		`src="/charts/relation.svg?rev=1"`,
		`value="Japan" checked`,
		"<h3>Automatic insight</h3><ul><li>Average fuel efficiency: <strong>26.25 MPG</strong></li>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageEmptySelectionShowsPlaceholders(t *testing.T) {
	_, h := testServer(t)
	rec := do(h, "GET", "/?applied=1&origin=Europe&cyl=8&year_min=70&year_max=80", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Count(body, views.NoDataMessage) != 4 {
		t.Fatalf("expected placeholder for the summary and the three charts:\n%s", body)
	}
	if strings.Contains(body, "<img") || strings.Contains(body, "Automatic insight") {
		t.Fatal("no chart or insight should render for an empty selection")
	}
}

func TestPageInvalidSelection(t *testing.T) {
	s, h := testServer(t)
	rec := do(h, "GET", "/?origin=Mars", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown origin") {
		t.Fatal("page should show the validation error")
	}
	if len(s.dash.Selection().Origins) != 3 {
		t.Fatal("invalid selection should leave state untouched")
	}
}

func TestSelectionFromQuery(t *testing.T) {
	current := filter.Selection{Origins: []string{"USA", "Japan"}, Cylinders: []int{4, 8}, Years: filter.YearRange{Min: 70, Max: 82}}

	sel, changed, err := selectionFromQuery(url.Values{}, current)
	if err != nil || changed || len(sel.Origins) != 2 {
		t.Fatalf("empty query should keep current selection, got %+v %v %v", sel, changed, err)
	}

	sel, changed, err = selectionFromQuery(url.Values{"year_max": {"75"}}, current)
	if err != nil || !changed || sel.Years.Max != 75 || len(sel.Origins) != 2 || len(sel.Cylinders) != 2 {
		t.Fatalf("year-only query should keep the sets, got %+v", sel)
	}

	sel, _, err = selectionFromQuery(url.Values{"applied": {"1"}, "cyl": {"4"}}, current)
	if err != nil || len(sel.Origins) != 0 || len(sel.Cylinders) != 1 {
		t.Fatalf("form submit without origins should select none, got %+v", sel)
	}

	if _, _, err := selectionFromQuery(url.Values{"cyl": {"four"}}, current); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := selectionFromQuery(url.Values{"year_min": {"x"}}, current); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPutSelection(t *testing.T) {
	s, h := testServer(t)
	rec := do(h, "PUT", "/api/selection", `{"origins":["USA"],"cylinders":[8,6],"years":{"min":70,"max":72}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SelectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Rows != 2 || resp.Revision != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if snap := s.panels.Snapshot(); snap.Summary.MeanMPG != 20 || snap.Summary.Count != 2 {
		t.Fatalf("unexpected summary %+v", snap.Summary)
	}

	rec = do(h, "GET", "/api/selection", "")
	var sel filter.Selection
	json.NewDecoder(rec.Body).Decode(&sel)
	if len(sel.Origins) != 1 || sel.Years.Max != 72 {
		t.Fatalf("unexpected stored selection %+v", sel)
	}
}

func TestPutSingleControl(t *testing.T) {
	_, h := testServer(t)
	steps := []struct {
		control, body string
		rows          int
	}{
		{"origins", `["USA"]`, 2},
		{"cylinders", `[8,6]`, 2},
		{"years", `{"min":70,"max":70}`, 1},
	}
	for i, st := range steps {
		rec := do(h, "PUT", "/api/selection/"+st.control, st.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", st.control, rec.Code, rec.Body.String())
		}
		var resp SelectionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Rows != st.rows || resp.Revision != uint64(i+2) {
			t.Fatalf("%s: unexpected response %+v", st.control, resp)
		}
	}

	tests := map[string]struct {
		target, body string
		code         int
	}{
		"unknown control": {"/api/selection/colour", `["red"]`, http.StatusNotFound},
		"wrong shape":     {"/api/selection/origins", `{"min":1}`, http.StatusBadRequest},
		"unknown value":   {"/api/selection/cylinders", `[5]`, http.StatusBadRequest},
		"inverted years":  {"/api/selection/years", `{"min":80,"max":70}`, http.StatusBadRequest},
	}
	for name, tc := range tests {
		if rec := do(h, "PUT", tc.target, tc.body); rec.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", name, tc.code, rec.Code)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	got := string(renderMarkdown("### Title <x>\n- one **bold**\n- two\ntail **open\n"))
	want := "<h3>Title &lt;x&gt;</h3><ul><li>one <strong>bold</strong></li><li>two</li></ul><p>tail **open</p>"
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	if renderMarkdown("") != "" {
		t.Fatal("empty input should render nothing")
	}
}

func TestPutSelectionErrors(t *testing.T) {
	_, h := testServer(t)
	tests := map[string]string{
		"bad json":      `{`,
		"unknown field": `{"origin":["USA"]}`,
		"unknown cyl":   `{"origins":[],"cylinders":[5],"years":{"min":70,"max":80}}`,
		"inverted":      `{"origins":[],"cylinders":[],"years":{"min":80,"max":70}}`,
	}
	for name, body := range tests {
		rec := do(h, "PUT", "/api/selection", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("%s: expected JSON error body", name)
		}
	}
}

func TestDomainsEndpoint(t *testing.T) {
	_, h := testServer(t)
	var resp DomainsResponse
	if err := json.NewDecoder(do(h, "GET", "/api/domains", "").Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Domain.Origins) != 3 || resp.Domain.Years != (filter.YearRange{Min: 70, Max: 80}) {
		t.Fatalf("unexpected domain %+v", resp.Domain)
	}
	if len(resp.Default.Cylinders) != 3 || resp.Report.Source != "test" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestViewsJSONAndMsgpack(t *testing.T) {
	_, h := testServer(t)
	var set views.Set
	if err := json.NewDecoder(do(h, "GET", "/api/views", "").Body).Decode(&set); err != nil {
		t.Fatal(err)
	}
	if set.Summary.Count != 4 || len(set.Distribution.Bins) != views.BinCount {
		t.Fatalf("unexpected views %+v", set.Summary)
	}

	rec := do(h, "GET", "/api/views", "", "Accept", "application/msgpack")
	if rec.Header().Get("Content-Type") != "application/msgpack" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	dec := msgpack.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.SetCustomStructTag("json")
	var packed views.Set
	if err := dec.Decode(&packed); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if packed.Summary.MeanMPG != set.Summary.MeanMPG || len(packed.Relation.Series) != 3 {
		t.Fatalf("msgpack views differ: %+v", packed.Summary)
	}
}

func TestRecordsEndpoint(t *testing.T) {
	_, h := testServer(t)
	do(h, "PUT", "/api/selection", `{"origins":["Japan","Europe"],"cylinders":[4],"years":{"min":70,"max":80}}`)
	var resp RecordsResponse
	if err := json.NewDecoder(do(h, "GET", "/api/records", "").Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || resp.Records[0].Name != "toyota corolla" || resp.Records[1].Make != "Volkswagen" {
		t.Fatalf("unexpected records %+v", resp)
	}
}

func TestChartEndpoint(t *testing.T) {
	_, h := testServer(t)
	rec := do(h, "GET", "/charts/relation.svg", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("expected svg, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Fatal("expected svg body")
	}
	if rec := do(h, "GET", "/charts/pie.svg", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	do(h, "PUT", "/api/selection", `{"origins":[],"cylinders":[],"years":{"min":70,"max":80}}`)
	if rec := do(h, "GET", "/charts/distribution.png", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty view, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := testServer(t)
	do(h, "GET", "/api/health", "")
	body := do(h, "GET", "/metrics", "").Body.String()
	for _, want := range []string{"dashboard_recomputes_total 1", "dashboard_loaded_rows 4", `dashboard_http_requests_total{code="200"}`, "dashboard_http_request_seconds_count 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	_, h := testServer(t)
	if rec := do(h, "GET", "/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
