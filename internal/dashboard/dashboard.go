// Package dashboard собирает HTML-страницу дашборда из набора записей.
package dashboard

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"sentiment_dashboard/internal/analysis"
	"sentiment_dashboard/internal/charts"
	"sentiment_dashboard/internal/models"
)

// PageTitle — заголовок всех страниц дашборда.
const PageTitle = "Newspaper Data Analysis"

// Заголовки разделов страницы.
const (
	PiesHeading      = "Pie Charts for Each News Source and Label"
	MonthlyHeading   = "Grouped Bar Plot with Month-Year, News Source, and Label"
	DateLabelHeading = "Bar chart with labels and date"
	SentimentHeading = "Sentiment Analysis Dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"svgURI": func(svg []byte) template.URL {
		return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
	},
	"date":  models.FormatDate,
	"score": func(v float64) string { return fmt.Sprintf("%.4f", v) },
}).ParseFS(templateFS, "templates/*.html"))

// Observer получает длительность отрисовки каждого вида графиков.
type Observer func(kind string, elapsed time.Duration)

// Page — данные шаблона dashboard.html.
type Page struct {
	Title      string
	FileName   string
	Total      int
	Preview    []models.Record
	HiddenRows int

	PiesHeading      string
	Pies             []charts.Figure
	MonthlyHeading   string
	Monthly          []charts.Figure
	DateLabelHeading string
	DateLabel        charts.Figure
	SentimentHeading string
	Means            []analysis.SentimentMean
	Sentiment        charts.Figure
}

// IndexData — данные шаблона index.html.
type IndexData struct {
	Title       string
	MaxUploadMB int
	Error       string
}

// Builder строит страницы дашборда.
type Builder struct {
	renderer    *charts.Renderer
	previewRows int
	observe     Observer
}

// NewBuilder создаёт Builder. observe может быть nil.
func NewBuilder(renderer *charts.Renderer, previewRows int, observe Observer) *Builder {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &Builder{renderer: renderer, previewRows: previewRows, observe: observe}
}

// Build агрегирует записи ds и отрисовывает все четыре вида графиков.
func (b *Builder) Build(ds *models.Dataset, fileName string) (*Page, error) {
	records := ds.Records
	sources := analysis.Sources(records)

	page := &Page{
		Title:            PageTitle,
		FileName:         fileName,
		Total:            len(records),
		Preview:          records,
		PiesHeading:      PiesHeading,
		MonthlyHeading:   MonthlyHeading,
		DateLabelHeading: DateLabelHeading,
		SentimentHeading: SentimentHeading,
	}
	if len(records) > b.previewRows {
		page.Preview = records[:b.previewRows]
		page.HiddenRows = len(records) - b.previewRows
	}

	var err error

	start := time.Now()
	if page.Pies, err = b.renderer.Pies(analysis.SourceLabelCounts(records)); err != nil {
		return nil, fmt.Errorf("pie charts: %w", err)
	}
	b.observe("pies", time.Since(start))

	start = time.Now()
	if page.Monthly, err = b.renderer.MonthlyBars(analysis.MonthlyLabelCounts(records), sources); err != nil {
		return nil, fmt.Errorf("monthly bar chart: %w", err)
	}
	b.observe("monthly", time.Since(start))

	start = time.Now()
	if page.DateLabel, err = b.renderer.DateLabelBars(analysis.DateLabelCounts(records)); err != nil {
		return nil, fmt.Errorf("date label bar chart: %w", err)
	}
	b.observe("date_label", time.Since(start))

	start = time.Now()
	page.Means = analysis.SentimentMeans(records)
	if page.Sentiment, err = b.renderer.SentimentLine(page.Means, sources); err != nil {
		return nil, fmt.Errorf("sentiment chart: %w", err)
	}
	b.observe("sentiment", time.Since(start))

	return page, nil
}

// Render выполняет шаблон дашборда.
func Render(w io.Writer, page *Page) error {
	return templates.ExecuteTemplate(w, "dashboard.html", page)
}

// RenderIndex выполняет шаблон страницы загрузки.
func RenderIndex(w io.Writer, data IndexData) error {
	if data.Title == "" {
		data.Title = PageTitle
	}
	return templates.ExecuteTemplate(w, "index.html", data)
}
