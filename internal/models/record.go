package models

import "time"

// Известные значения метки тональности.
const (
	LabelNeutral  = "neutral"
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// Названия обязательных столбцов таблицы.
const (
	ColumnDate   = "date"
	ColumnSource = "news source"
	ColumnLabel  = "label"
	ColumnScore  = "score"
)

// RequiredColumns перечисляет столбцы, без которых файл не загружается.
var RequiredColumns = []string{ColumnDate, ColumnSource, ColumnLabel, ColumnScore}

// Record представляет одну размеченную новость из загруженной таблицы.
type Record struct {
	Date       time.Time `json:"date"`
	NewsSource string    `json:"news_source"`
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
}

// MonthYear возвращает месяц публикации в виде "2006-01".
func (r Record) MonthYear() string {
	return MonthYear(r.Date)
}

// MonthYear форматирует t как месячный период.
func MonthYear(t time.Time) string {
	return t.Format("2006-01")
}

// FormatDate печатает дату без времени, если время полночь.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// Dataset содержит все записи одного загруженного файла.
type Dataset struct {
	Sheet   string   `json:"sheet"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}
