// Package web holds the embedded HTML templates of the web UI.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var content embed.FS

// Templates parses every page. Pages are addressed by file name, e.g.
// "form.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(content, "templates/*.html")
}
