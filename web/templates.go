package web

import (
	"embed"
	"html/template"

	"github.com/kbukum/subtitler/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// page is the data rendered by index.html.
type page struct {
	Accept      string
	Language    string
	Error       string
	Result      *pipeline.Result
	DownloadURL string
}
