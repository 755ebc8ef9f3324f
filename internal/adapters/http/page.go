package httpadapter

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type categoryCount struct {
	Category domain.Category
	Files    int
}

type pageData struct {
	MaxFileSize string
	Report      *domain.BatchReport
	Counts      []categoryCount
	Error       string
}

func newPageData(report *domain.BatchReport, errMessage string) pageData {
	data := pageData{
		MaxFileSize: humanize.IBytes(domain.MaxFileSize),
		Report:      report,
		Error:       errMessage,
	}
	if report != nil {
		for _, category := range report.Summary.Categories() {
			data.Counts = append(data.Counts, categoryCount{Category: category, Files: report.Summary[category]})
		}
	}
	return data
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("page_render_failed", "error", err)
	}
}
