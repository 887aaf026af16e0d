package api

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/store"
)

const layout = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .}}{{.}} - {{end}}Hunter Searcher</title>
</head>
<body>
<form action="/search" method="get">
<input type="text" name="q" value="{{.}}" autofocus>
<button type="submit">Search</button>
</form>
{{end}}
{{define "foot"}}</body>
</html>
{{end}}`

var (
	indexTemplate = template.Must(template.New("index").Parse(layout +
		`{{template "head" ""}}{{template "foot"}}`))

	resultsTemplate = template.Must(template.New("results").Parse(layout +
		`{{template "head" .Query}}
{{if .Results}}<ol>
{{range .Results}}<li>
<a href="{{.URL}}">{{.Title}}</a>
<div>{{.URL}}</div>
{{if .Blurb}}<p>{{.Blurb}}</p>{{end}}
</li>
{{end}}</ol>
{{else}}<p>No results.</p>
{{end}}{{template "foot"}}`))
)

type resultRow struct {
	Title string
	URL   string
	Blurb string
}

type resultsView struct {
	Query   string
	Results []resultRow
}

func toRows(results []store.SearchResult) []resultRow {
	rows := make([]resultRow, 0, len(results))
	for _, r := range results {
		row := resultRow{Title: r.Title, URL: r.URL}
		if r.Blurb != nil {
			row.Blurb = *r.Blurb
		}
		if row.Title == "" {
			row.Title = r.URL
		}
		rows = append(rows, row)
	}
	return rows
}

// render executes into a buffer first so a template error never leaves a
// half-written 200 response.
func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render template failed", zap.String("template", tmpl.Name()), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write page failed", zap.Error(err))
	}
}
