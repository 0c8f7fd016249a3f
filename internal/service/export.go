package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"html"
	"strings"
	"time"

	"dainiki/internal/models"
	"dainiki/internal/observability"
	"dainiki/internal/repository"
)

// ExportFormat names a supported export output.
type ExportFormat string

const (
	FormatHTML     ExportFormat = "html"
	FormatMarkdown ExportFormat = "markdown"
	FormatCSV      ExportFormat = "csv"
)

// Export is a rendered document ready to stream back to the client.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a date range of a user's journal into downloadable
// documents.
type ExportService struct {
	entryRepo repository.EntryRepository
}

func NewExportService(entryRepo repository.EntryRepository) *ExportService {
	return &ExportService{entryRepo: entryRepo}
}

// Render exports all entries between start and end inclusive. An empty range
// still renders a valid document.
func (s *ExportService) Render(ctx context.Context, userID uint, format ExportFormat, start, end time.Time) (*Export, error) {
	start = models.DayOf(start)
	end = models.DayOf(end)
	if end.Before(start) {
		return nil, models.NewValidationError("End date must not be before start date")
	}

	entries, err := s.entryRepo.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	var data []byte
	var contentType, ext string
	switch format {
	case FormatHTML:
		data = renderHTML(entries, start, end)
		contentType, ext = "text/html; charset=utf-8", "html"
	case FormatMarkdown:
		data = renderMarkdown(entries, start, end)
		contentType, ext = "text/markdown; charset=utf-8", "md"
	case FormatCSV:
		data, err = renderCSV(entries)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		contentType, ext = "text/csv; charset=utf-8", "csv"
	default:
		return nil, models.NewValidationError("Unsupported export format: " + string(format))
	}

	observability.ExportsRendered.WithLabelValues(string(format)).Inc()
	return &Export{
		Filename:    exportFilename(start, end, ext),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func exportFilename(start, end time.Time, ext string) string {
	return fmt.Sprintf("journal_%s_%s.%s", start.Format("2006-01-02"), end.Format("2006-01-02"), ext)
}

func renderHTML(entries []models.JournalEntry, start, end time.Time) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Journal Export</title>\n")
	b.WriteString("<style>body{font-family:sans-serif;max-width:720px;margin:2rem auto;padding:0 1rem}article{border-bottom:1px solid #ddd;padding:1rem 0}h2{margin-bottom:.25rem}.meta{color:#666;font-size:.9rem}.tag{background:#eee;border-radius:4px;padding:0 .4rem;margin-right:.25rem}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>Journal: %s to %s</h1>\n", start.Format("January 2, 2006"), end.Format("January 2, 2006"))

	for i := range entries {
		e := &entries[i]
		b.WriteString("<article>\n")
		fmt.Fprintf(&b, "<h2>%s %s</h2>\n", e.PrimaryMood.Emoji(), html.EscapeString(e.Title))
		fmt.Fprintf(&b, "<p class=\"meta\">%s &middot; %s &middot; %s</p>\n",
			e.Date.Format("January 2, 2006"), html.EscapeString(string(e.Category)), html.EscapeString(e.PrimaryMood.String()))
		if len(e.Tags) > 0 {
			b.WriteString("<p>")
			for _, tag := range e.Tags {
				fmt.Fprintf(&b, "<span class=\"tag\">%s</span>", html.EscapeString(tag.Name))
			}
			b.WriteString("</p>\n")
		}
		for _, para := range strings.Split(e.Content, "\n") {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
		}
		b.WriteString("</article>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

func renderMarkdown(entries []models.JournalEntry, start, end time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Journal: %s to %s\n\n", start.Format("January 2, 2006"), end.Format("January 2, 2006"))

	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(&b, "## %s %s\n\n", e.PrimaryMood.Emoji(), e.Title)
		fmt.Fprintf(&b, "*%s | %s | %s*\n\n", e.Date.Format("January 2, 2006"), e.Category, e.PrimaryMood.String())
		if len(e.Tags) > 0 {
			names := make([]string, len(e.Tags))
			for j, tag := range e.Tags {
				names[j] = tag.Name
			}
			fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(names, ", "))
		}
		b.WriteString(e.Content)
		b.WriteString("\n\n---\n\n")
	}

	return []byte(b.String())
}

func renderCSV(entries []models.JournalEntry) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"date", "title", "content", "mood", "category", "favorite", "tags", "word_count"}); err != nil {
		return nil, err
	}
	for i := range entries {
		e := &entries[i]
		names := make([]string, len(e.Tags))
		for j, tag := range e.Tags {
			names[j] = tag.Name
		}
		row := []string{
			e.Date.Format("2006-01-02"),
			e.Title,
			e.Content,
			e.PrimaryMood.String(),
			string(e.Category),
			fmt.Sprintf("%t", e.IsFavorite),
			strings.Join(names, ";"),
			fmt.Sprintf("%d", e.WordCount()),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
