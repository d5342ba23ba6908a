package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"sentiment_dashboard/internal/logger"
	"sentiment_dashboard/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn возвращается, если в заголовке нет обязательного столбца.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidValue возвращается, если значение ячейки не разбирается.
	ErrInvalidValue = errors.New("invalid cell value")
	// ErrNoRecords возвращается для листа без строк данных.
	ErrNoRecords = errors.New("sheet has no data rows")
	// ErrNotWorkbook возвращается, если файл не является книгой xlsx.
	ErrNotWorkbook = errors.New("not an xlsx workbook")
)

// Текстовые форматы даты, которые встречаются в выгрузках.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02.01.2006",
}

// Load читает первый лист xlsx-книги из r и возвращает разобранный набор записей.
func Load(r io.Reader) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRecords
	}
	sheet := sheets[0]

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	header := rows[0]
	idx, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{Sheet: sheet, Columns: trimAll(header)}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// нумерация строк как в Excel: заголовок — строка 1
		rowNum := i + 2
		rec, err := parseRow(row, idx, date1904)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(ds.Records) == 0 {
		return nil, ErrNoRecords
	}

	logger.Log.WithFields(logger.Fields{
		"sheet":   sheet,
		"records": len(ds.Records),
	}).Debug("Workbook loaded")
	return ds, nil
}

type columnIndex struct {
	date, source, label, score int
}

func locateColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := pos[key]; !seen {
			pos[key] = i
		}
	}

	var missing []string
	lookup := func(col string) int {
		i, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			return -1
		}
		return i
	}

	idx := columnIndex{
		date:   lookup(models.ColumnDate),
		source: lookup(models.ColumnSource),
		label:  lookup(models.ColumnLabel),
		score:  lookup(models.ColumnScore),
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex, date1904 bool) (models.Record, error) {
	var rec models.Record

	date, err := ParseDate(cell(row, idx.date), date1904)
	if err != nil {
		return rec, fmt.Errorf("%w: %s: %v", ErrInvalidValue, models.ColumnDate, err)
	}

	rawScore := cell(row, idx.score)
	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return rec, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidValue, models.ColumnScore, rawScore)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return rec, fmt.Errorf("%w: %s: %q is not a finite number", ErrInvalidValue, models.ColumnScore, rawScore)
	}

	rec.Date = date
	rec.NewsSource = cell(row, idx.source)
	rec.Label = cell(row, idx.label)
	rec.Score = score
	return rec, nil
}

// ParseDate разбирает серийный номер Excel или текстовую дату.
func ParseDate(raw string, date1904 bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, err
		}
		return t.Round(time.Second), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
