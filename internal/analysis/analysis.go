// Package analysis группирует записи тональности для графиков дашборда.
package analysis

import (
	"sort"
	"time"

	"sentiment_dashboard/internal/models"
)

// LabelCount — число записей с одной меткой.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SourceBreakdown содержит распределение меток для одного источника.
type SourceBreakdown struct {
	Source string       `json:"source"`
	Labels []LabelCount `json:"labels"`
}

// MonthlyCount — число записей для тройки (месяц, метка, источник).
type MonthlyCount struct {
	MonthYear string `json:"month_year"`
	Label     string `json:"label"`
	Source    string `json:"source"`
	Count     int    `json:"count"`
}

// DateLabelCount — число записей за дату с данной меткой.
type DateLabelCount struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// SentimentMean — средняя оценка источника за дату.
type SentimentMean struct {
	Date   time.Time `json:"date"`
	Source string    `json:"source"`
	Mean   float64   `json:"mean"`
	N      int       `json:"n"`
}

// Summary объединяет все агрегаты одного набора данных.
type Summary struct {
	Records        int               `json:"records"`
	Sources        []string          `json:"sources"`
	Labels         []string          `json:"labels"`
	SourceLabels   []SourceBreakdown `json:"source_labels"`
	Monthly        []MonthlyCount    `json:"monthly"`
	DateLabels     []DateLabelCount  `json:"date_labels"`
	SentimentMeans []SentimentMean   `json:"sentiment_means"`
}

var canonicalLabels = map[string]int{
	models.LabelNeutral:  0,
	models.LabelPositive: 1,
	models.LabelNegative: 2,
}

// labelLess сравнивает метки: сначала neutral, positive, negative, затем по алфавиту.
func labelLess(a, b string) bool {
	ra, okA := canonicalLabels[a]
	rb, okB := canonicalLabels[b]
	switch {
	case okA && okB:
		return ra < rb
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

// OrderLabels возвращает уникальные метки в каноническом порядке.
func OrderLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return labelLess(out[i], out[j]) })
	return out
}

// Sources возвращает источники в порядке первого появления.
func Sources(records []models.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.NewsSource] {
			seen[r.NewsSource] = true
			out = append(out, r.NewsSource)
		}
	}
	return out
}

// Labels возвращает все метки набора в каноническом порядке.
func Labels(records []models.Record) []string {
	all := make([]string, len(records))
	for i, r := range records {
		all[i] = r.Label
	}
	return OrderLabels(all)
}

// SourceLabelCounts считает метки отдельно для каждого источника.
// Метки внутри источника идут по убыванию числа, при равенстве — по первому появлению.
func SourceLabelCounts(records []models.Record) []SourceBreakdown {
	sources := Sources(records)
	bySource := make(map[string]*SourceBreakdown, len(sources))
	out := make([]SourceBreakdown, len(sources))
	for i, s := range sources {
		out[i].Source = s
		bySource[s] = &out[i]
	}

	for _, r := range records {
		b := bySource[r.NewsSource]
		found := false
		for i := range b.Labels {
			if b.Labels[i].Label == r.Label {
				b.Labels[i].Count++
				found = true
				break
			}
		}
		if !found {
			b.Labels = append(b.Labels, LabelCount{Label: r.Label, Count: 1})
		}
	}

	for i := range out {
		labels := out[i].Labels
		sort.SliceStable(labels, func(a, b int) bool { return labels[a].Count > labels[b].Count })
	}
	return out
}

// MonthlyLabelCounts группирует записи по (месяц, метка, источник).
func MonthlyLabelCounts(records []models.Record) []MonthlyCount {
	type key struct{ month, label, source string }
	counts := make(map[key]int)
	for _, r := range records {
		counts[key{r.MonthYear(), r.Label, r.NewsSource}]++
	}

	out := make([]MonthlyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, MonthlyCount{MonthYear: k.month, Label: k.label, Source: k.source, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MonthYear != b.MonthYear {
			return a.MonthYear < b.MonthYear
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Source < b.Source
	})
	return out
}

// DateLabelCounts группирует записи по (дата, метка).
func DateLabelCounts(records []models.Record) []DateLabelCount {
	type key struct {
		date  time.Time
		label string
	}
	counts := make(map[key]int)
	for _, r := range records {
		counts[key{r.Date, r.Label}]++
	}

	out := make([]DateLabelCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, DateLabelCount{Date: k.date, Label: k.label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return labelLess(out[i].Label, out[j].Label)
	})
	return out
}

// SentimentMeans вычисляет среднюю оценку для каждой пары (дата, источник).
func SentimentMeans(records []models.Record) []SentimentMean {
	type key struct {
		date   time.Time
		source string
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[key]*acc)
	for _, r := range records {
		k := key{r.Date, r.NewsSource}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += r.Score
		a.n++
	}

	out := make([]SentimentMean, 0, len(groups))
	for k, a := range groups {
		out = append(out, SentimentMean{Date: k.date, Source: k.source, Mean: a.sum / float64(a.n), N: a.n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Summarize вычисляет все агрегаты набора данных.
func Summarize(ds *models.Dataset) Summary {
	return Summary{
		Records:        len(ds.Records),
		Sources:        Sources(ds.Records),
		Labels:         Labels(ds.Records),
		SourceLabels:   SourceLabelCounts(ds.Records),
		Monthly:        MonthlyLabelCounts(ds.Records),
		DateLabels:     DateLabelCounts(ds.Records),
		SentimentMeans: SentimentMeans(ds.Records),
	}
}
