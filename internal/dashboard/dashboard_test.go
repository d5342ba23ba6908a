package dashboard_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sentiment_dashboard/internal/charts"
	"sentiment_dashboard/internal/dashboard"
	"sentiment_dashboard/internal/models"

	"github.com/stretchr/testify/require"
)

func dataset() *models.Dataset {
	day := func(m time.Month, d int) time.Time { return time.Date(2023, m, d, 0, 0, 0, 0, time.UTC) }
	return &models.Dataset{
		Sheet:   "Sheet1",
		Columns: []string{"date", "news source", "label", "score"},
		Records: []models.Record{
			{Date: day(11, 2), NewsSource: "Guardian", Label: "negative", Score: -0.6},
			{Date: day(11, 2), NewsSource: "Times", Label: "positive", Score: 0.4},
			{Date: day(12, 9), NewsSource: "Guardian", Label: "neutral", Score: 0.1},
			{Date: day(12, 9), NewsSource: "Guardian", Label: "neutral", Score: -0.1},
		},
	}
}

func newBuilder(previewRows int, observe dashboard.Observer) *dashboard.Builder {
	r := charts.NewRenderer(charts.Sizes{PieSize: 300, WideWidth: 900, BarHeight: 300, LineHeight: 300})
	return dashboard.NewBuilder(r, previewRows, observe)
}

func TestBuild(t *testing.T) {
	var kinds []string
	b := newBuilder(10, func(kind string, _ time.Duration) { kinds = append(kinds, kind) })

	page, err := b.Build(dataset(), "news.xlsx")
	require.NoError(t, err)
	require.Equal(t, dashboard.PageTitle, page.Title)
	require.Equal(t, 4, page.Total)
	require.Len(t, page.Preview, 4)
	require.Zero(t, page.HiddenRows)
	require.Len(t, page.Pies, 2)
	require.Len(t, page.Monthly, 3)
	require.Len(t, page.Means, 3)
	require.Equal(t, []string{"pies", "monthly", "date_label", "sentiment"}, kinds)
}

func TestBuild_TruncatesPreview(t *testing.T) {
	page, err := newBuilder(1, nil).Build(dataset(), "news.xlsx")
	require.NoError(t, err)
	require.Len(t, page.Preview, 1)
	require.Equal(t, 3, page.HiddenRows)
}

func TestRender(t *testing.T) {
	page, err := newBuilder(10, nil).Build(dataset(), "news.xlsx")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dashboard.Render(&buf, page))
	html := buf.String()

	for _, heading := range []string{
		dashboard.PageTitle,
		dashboard.PiesHeading,
		dashboard.MonthlyHeading,
		dashboard.DateLabelHeading,
		dashboard.SentimentHeading,
		"Displaying Data:",
	} {
		require.Contains(t, html, heading)
	}
	require.Equal(t, 2+3+1+1, strings.Count(html, "data:image/svg+xml;base64,"))
	require.Contains(t, html, "Guardian")
	require.Contains(t, html, "2023-12-09")
}

func TestRenderIndex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, dashboard.RenderIndex(&buf, dashboard.IndexData{MaxUploadMB: 5, Error: "missing <column>"}))
	html := buf.String()
	require.Contains(t, html, "Upload Excel file")
	require.Contains(t, html, "Limit 5 MB")
	require.Contains(t, html, "missing &lt;column&gt;")
}
