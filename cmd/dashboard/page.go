package main

import (
	"bytes"
	"embed"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/domain"
	"github.com/WessleyAI/mpg-dashboard/engine/filter"
	"github.com/WessleyAI/mpg-dashboard/engine/render"
	"github.com/WessleyAI/mpg-dashboard/engine/views"
	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("index.html").
	Funcs(template.FuncMap{"md": renderMarkdown}).
	ParseFS(templateFS, "templates/index.html"))

// inlineMarkdown escapes s and turns **bold** spans into <strong>.
func inlineMarkdown(s string) string {
	parts := strings.Split(html.EscapeString(s), "**")
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString("<strong>" + p + "</strong>")
			continue
		}
		if i%2 == 1 {
			b.WriteString("**")
		}
		b.WriteString(p)
	}
	return b.String()
}

// renderMarkdown covers what the insight block emits: "### " headings,
// "- " bullet lists and inline bold. Other lines become paragraphs.
func renderMarkdown(src string) template.HTML {
	var b strings.Builder
	inList := false
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, " \t\r")
		item, isItem := strings.CutPrefix(line, "- ")
		if inList && !isItem {
			b.WriteString("</ul>")
			inList = false
		}
		switch {
		case isItem:
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + inlineMarkdown(item) + "</li>")
		case strings.HasPrefix(line, "### "):
			b.WriteString("<h3>" + inlineMarkdown(strings.TrimPrefix(line, "### ")) + "</h3>")
		case line != "":
			b.WriteString("<p>" + inlineMarkdown(line) + "</p>")
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return template.HTML(b.String())
}

type option struct {
	Value   string
	Checked bool
}

type chartPanel struct {
	Name   string
	Title  string
	NoData bool
	Wide   bool
}

type pageData struct {
	Origins   []option
	Cylinders []option
	Domain    filter.Domain
	Selection filter.Selection
	Views     views.Set
	Report    dataset.Report
	Charts    []chartPanel
	NoData    string
	Error     string
}

func (s *server) pageData(errMsg string) pageData {
	dom := s.dash.Domain()
	sel := s.dash.Selection()
	set := s.panels.Snapshot()

	chosenOrigins := fn.Set(sel.Origins)
	chosenCyl := fn.Set(sel.Cylinders)
	data := pageData{
		Domain:    dom,
		Selection: sel,
		Views:     set,
		Report:    s.report,
		NoData:    views.NoDataMessage,
		Error:     errMsg,
	}
	for _, o := range dom.Origins {
		_, ok := chosenOrigins[o]
		data.Origins = append(data.Origins, option{Value: o, Checked: ok})
	}
	for _, c := range dom.Cylinders {
		_, ok := chosenCyl[c]
		data.Cylinders = append(data.Cylinders, option{Value: strconv.Itoa(c), Checked: ok})
	}
	data.Charts = []chartPanel{
		{Name: render.ChartDistribution, Title: "Fuel efficiency distribution (MPG)", NoData: placeholderFor(set, render.ChartDistribution)},
		{Name: render.ChartCylinders, Title: "Average MPG by cylinder count", NoData: placeholderFor(set, render.ChartCylinders)},
		{Name: render.ChartRelation, Title: "Car weight vs fuel efficiency", NoData: placeholderFor(set, render.ChartRelation), Wide: true},
	}
	return data
}

// selectionFromQuery overlays the query parameters on current. A control
// whose parameter is absent keeps its value, except after a form submit
// (applied=1) where an absent checkbox group means nothing is selected.
func selectionFromQuery(q url.Values, current filter.Selection) (filter.Selection, bool, error) {
	submitted := q.Get("applied") != ""
	sel := current.Clone()
	changed := submitted

	if _, ok := q["origin"]; ok || submitted {
		sel.Origins = append([]string{}, q["origin"]...)
		changed = true
	}
	if _, ok := q["cyl"]; ok || submitted {
		sel.Cylinders = []int{}
		for _, raw := range q["cyl"] {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return current, false, domain.NewValidationError("cylinders", raw, domain.ErrUnknownCylinders)
			}
			sel.Cylinders = append(sel.Cylinders, n)
		}
		changed = true
	}
	for key, dst := range map[string]*int{"year_min": &sel.Years.Min, "year_max": &sel.Years.Max} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return current, false, domain.NewValidationError("years", raw, domain.ErrYearOutOfRange)
		}
		*dst = n
		changed = true
	}
	return sel, changed, nil
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	var errMsg string

	sel, changed, err := selectionFromQuery(r.URL.Query(), s.dash.Selection())
	if err == nil && changed {
		_, err = s.dash.Apply(r.Context(), sel)
	}
	if err != nil {
		if !isValidation(err) {
			s.logger.Error("apply selection failed", "err", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		status = http.StatusBadRequest
		errMsg = err.Error()
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, s.pageData(errMsg)); err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
