package loader_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sentiment_dashboard/internal/loader"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestLoad_Success(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"date", "news source", "label", "score", "headline"},
		{day(5), "Reuters", "positive", 0.75, "a"},
		{"2024-01-06", "BBC", "negative", -0.5, "b"},
		{},
		{day(7), "Reuters", "neutral", 0, "c"},
	})

	ds, err := loader.Load(buf)
	require.NoError(t, err)
	require.Equal(t, "Sheet1", ds.Sheet)
	require.Equal(t, []string{"date", "news source", "label", "score", "headline"}, ds.Columns)
	require.Len(t, ds.Records, 3)

	require.Equal(t, day(5), ds.Records[0].Date)
	require.Equal(t, "Reuters", ds.Records[0].NewsSource)
	require.Equal(t, "positive", ds.Records[0].Label)
	require.InDelta(t, 0.75, ds.Records[0].Score, 1e-9)

	require.Equal(t, day(6), ds.Records[1].Date)
	require.InDelta(t, -0.5, ds.Records[1].Score, 1e-9)
	require.Equal(t, day(7), ds.Records[2].Date)
}

func TestLoad_HeaderIsCaseAndSpaceInsensitive(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{" Score", "LABEL", "News Source ", "Date"},
		{1, "neutral", "AP", "2024-02-01"},
	})

	ds, err := loader.Load(buf)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	require.Equal(t, "AP", ds.Records[0].NewsSource)
	require.Equal(t, float64(1), ds.Records[0].Score)
}

func TestLoad_MissingColumns(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"date", "label"},
		{"2024-01-01", "neutral"},
	})

	_, err := loader.Load(buf)
	require.ErrorIs(t, err, loader.ErrMissingColumn)
	require.Contains(t, err.Error(), "news source")
	require.Contains(t, err.Error(), "score")
}

func TestLoad_InvalidScore(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"date", "news source", "label", "score"},
		{"2024-01-01", "AP", "neutral", 0.1},
		{"2024-01-02", "AP", "neutral", "high"},
	})

	_, err := loader.Load(buf)
	require.ErrorIs(t, err, loader.ErrInvalidValue)
	require.Contains(t, err.Error(), "row 3")
	require.Contains(t, err.Error(), "score")
}

func TestLoad_NonFiniteScore(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		t.Run(raw, func(t *testing.T) {
			buf := buildWorkbook(t, [][]interface{}{
				{"date", "news source", "label", "score"},
				{"2024-01-01", "AP", "neutral", 0.1},
				{"2024-01-02", "AP", "positive", raw},
			})

			_, err := loader.Load(buf)
			require.ErrorIs(t, err, loader.ErrInvalidValue)
			require.Contains(t, err.Error(), "row 3")
			require.Contains(t, err.Error(), "not a finite number")
		})
	}
}

func TestLoad_InvalidDate(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"date", "news source", "label", "score"},
		{"yesterday", "AP", "neutral", 0.1},
	})

	_, err := loader.Load(buf)
	require.ErrorIs(t, err, loader.ErrInvalidValue)
	require.Contains(t, err.Error(), "row 2")
}

func TestLoad_NoRecords(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"date", "news source", "label", "score"},
	})

	_, err := loader.Load(buf)
	require.ErrorIs(t, err, loader.ErrNoRecords)
}

func TestLoad_NotAWorkbook(t *testing.T) {
	_, err := loader.Load(strings.NewReader("date,news source,label,score\n"))
	require.ErrorIs(t, err, loader.ErrNotWorkbook)
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "serial", raw: "45296", want: day(5)},
		{name: "serial with time", raw: "45296.5", want: day(5).Add(12 * time.Hour)},
		{name: "iso", raw: "2024-01-05", want: day(5)},
		{name: "iso with time", raw: "2024-01-05 08:15:00", want: day(5).Add(8*time.Hour + 15*time.Minute)},
		{name: "us", raw: "01/05/2024", want: day(5)},
		{name: "dotted", raw: "05.01.2024", want: day(5)},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "soon", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := loader.ParseDate(tc.raw, false)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}
