// ABOUTME: Self-contained HTML report of every console section
// ABOUTME: Uses an embedded html/template and renders chat content as markdown

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxBarPixels = 240

// Report is the data written by WriteReport.
type Report struct {
	Title       string
	GeneratedAt time.Time
	BaseURL     string
	SessionUser *client.User
	Summary     dashboard.Summary
	Users       []client.User
	Documents   []client.Document
	Chat        []client.ChatMessage
}

type reportMessage struct {
	Role client.Role
	HTML template.HTML
}

type reportData struct {
	Report
	Chat []reportMessage
}

// WriteReport renders r as a single HTML page.
func WriteReport(w io.Writer, r Report) error {
	if r.Title == "" {
		r.Title = "DigiStav Admin Report"
	}

	peak := r.Summary.Other
	for _, pc := range r.Summary.Plans {
		peak = max(peak, pc.Count)
	}

	funcs := template.FuncMap{
		"fmtTime": formatTime,
		"barWidth": func(n int) int {
			if peak == 0 {
				return 0
			}
			return n * maxBarPixels / peak
		},
	}

	tmpl, err := template.New("report.html").Funcs(funcs).ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	data := reportData{Report: r, Chat: make([]reportMessage, 0, len(r.Chat))}
	for _, m := range r.Chat {
		html, err := markdown(m.Content)
		if err != nil {
			return err
		}
		data.Chat = append(data.Chat, reportMessage{Role: m.Role, HTML: html})
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// markdown converts chat content to HTML. goldmark drops raw HTML from the
// source unless WithUnsafe is set, so the result is safe to embed.
func markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
