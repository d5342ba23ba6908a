package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"sentiment_dashboard/internal/analysis"
	"sentiment_dashboard/internal/models"
)

// ErrNoData возвращается, если строить график не из чего.
var ErrNoData = errors.New("no data to plot")

const day = 24 * time.Hour

// Sizes задаёт размеры графиков в пикселях.
type Sizes struct {
	PieSize    int
	WideWidth  int
	BarHeight  int
	LineHeight int
}

// LegendEntry — подпись и CSS-цвет одной серии.
type LegendEntry struct {
	Name  string
	Color string
}

// Figure — отрисованный SVG-график.
type Figure struct {
	Title  string
	Width  int
	Height int
	SVG    []byte
	Legend []LegendEntry
}

// Renderer строит SVG-графики дашборда.
type Renderer struct {
	sizes Sizes
}

// NewRenderer создаёт Renderer с заданными размерами.
func NewRenderer(sizes Sizes) *Renderer {
	return &Renderer{sizes: sizes}
}

func renderSVG(title string, render func(buf *bytes.Buffer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// Pies строит круговую диаграмму меток для каждого источника.
func (r *Renderer) Pies(breakdowns []analysis.SourceBreakdown) ([]Figure, error) {
	if len(breakdowns) == 0 {
		return nil, ErrNoData
	}

	size := r.sizes.PieSize
	figures := make([]Figure, 0, len(breakdowns))
	for _, b := range breakdowns {
		title := fmt.Sprintf("Pie Chart for %s and Label", b.Source)

		values := make([]chart.Value, 0, len(b.Labels))
		legend := make([]LegendEntry, 0, len(b.Labels))
		for i, lc := range b.Labels {
			sw := pick(set3, i)
			values = append(values, chart.Value{
				Value: float64(lc.Count),
				Label: fmt.Sprintf("%s (%d)", lc.Label, lc.Count),
				Style: chart.Style{FillColor: sw.color(), StrokeColor: sw.color()},
			})
			legend = append(legend, LegendEntry{Name: lc.Label, Color: sw.css()})
		}

		pie := chart.PieChart{
			Title:  title,
			Width:  size,
			Height: size,
			Values: values,
		}
		svg, err := renderSVG(title, func(buf *bytes.Buffer) error { return pie.Render(chart.SVG, buf) })
		if err != nil {
			return nil, err
		}
		figures = append(figures, Figure{Title: title, Width: size, Height: size, SVG: svg, Legend: legend})
	}
	return figures, nil
}

// MonthlyBars строит по одной панели на метку: столбцы по месяцам, сегменты по источникам.
// Цвет источника определяется его позицией в sources и совпадает во всех панелях.
func (r *Renderer) MonthlyBars(counts []analysis.MonthlyCount, sources []string) ([]Figure, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	sourceIdx := make(map[string]int, len(sources))
	for i, s := range sources {
		sourceIdx[s] = i
	}
	colorOf := func(source string) swatch {
		i, ok := sourceIdx[source]
		if !ok {
			i = len(sourceIdx)
			sourceIdx[source] = i
		}
		return pick(seriesPalette, i)
	}

	labels := make([]string, 0)
	months := make([]string, 0)
	seenMonth := make(map[string]bool)
	byLabel := make(map[string]map[string][]analysis.MonthlyCount)
	for _, c := range counts {
		if _, ok := byLabel[c.Label]; !ok {
			byLabel[c.Label] = make(map[string][]analysis.MonthlyCount)
			labels = append(labels, c.Label)
		}
		byLabel[c.Label][c.MonthYear] = append(byLabel[c.Label][c.MonthYear], c)
		if !seenMonth[c.MonthYear] {
			seenMonth[c.MonthYear] = true
			months = append(months, c.MonthYear)
		}
	}
	labels = analysis.OrderLabels(labels)

	width := r.sizes.WideWidth / len(labels)
	if width < 300 {
		width = 300
	}
	height := r.sizes.BarHeight

	figures := make([]Figure, 0, len(labels))
	for _, label := range labels {
		title := "label=" + label

		var bars []chart.StackedBar
		for _, month := range months {
			cs := byLabel[label][month]
			if len(cs) == 0 {
				continue
			}
			values := make([]chart.Value, 0, len(cs))
			for _, c := range cs {
				sw := colorOf(c.Source)
				values = append(values, chart.Value{
					Value: float64(c.Count),
					Label: c.Source,
					Style: chart.Style{FillColor: sw.color(), StrokeColor: sw.color(), StrokeWidth: 1},
				})
			}
			bars = append(bars, chart.StackedBar{Name: month, Values: values})
		}

		sbc := chart.StackedBarChart{
			Title:      title,
			Width:      width,
			Height:     height,
			BarSpacing: 20,
			Bars:       bars,
		}
		svg, err := renderSVG(title, func(buf *bytes.Buffer) error { return sbc.Render(chart.SVG, buf) })
		if err != nil {
			return nil, err
		}
		figures = append(figures, Figure{Title: title, Width: width, Height: height, SVG: svg})
	}

	legend := make([]LegendEntry, 0, len(sourceIdx))
	for _, s := range orderedKeys(sourceIdx) {
		legend = append(legend, LegendEntry{Name: s, Color: colorOf(s).css()})
	}
	for i := range figures {
		figures[i].Legend = legend
	}
	return figures, nil
}

// DateLabelBars строит сгруппированные столбцы: для каждой даты по столбцу на метку.
func (r *Renderer) DateLabelBars(counts []analysis.DateLabelCount) (Figure, error) {
	const title = "Bar Plot with Date and Label"
	if len(counts) == 0 {
		return Figure{}, ErrNoData
	}

	var (
		dates      []time.Time
		labelNames []string
	)
	byDate := make(map[time.Time]map[string]int)
	maxCount := 0
	for _, c := range counts {
		if _, ok := byDate[c.Date]; !ok {
			byDate[c.Date] = make(map[string]int)
			dates = append(dates, c.Date)
		}
		byDate[c.Date][c.Label] = c.Count
		labelNames = append(labelNames, c.Label)
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	labelNames = analysis.OrderLabels(labelNames)

	swatches := make(map[string]swatch, len(labelNames))
	legend := make([]LegendEntry, 0, len(labelNames))
	for i, l := range labelNames {
		sw := labelSwatch(l, i)
		swatches[l] = sw
		legend = append(legend, LegendEntry{Name: l, Color: sw.css()})
	}

	// Группа — столбцы всех меток за одну дату; пустые столбцы держат выравнивание.
	bars := make([]chart.Value, 0, len(dates)*len(labelNames))
	middle := len(labelNames) / 2
	for _, d := range dates {
		for i, l := range labelNames {
			name := ""
			if i == middle {
				name = models.FormatDate(d)
			}
			sw := swatches[l]
			bars = append(bars, chart.Value{
				Value: float64(byDate[d][l]),
				Label: name,
				Style: chart.Style{FillColor: sw.color(), StrokeColor: sw.color(), StrokeWidth: 1},
			})
		}
	}

	width, height := r.sizes.WideWidth, r.sizes.BarHeight
	spacing := 2
	barWidth := (width-120)/len(bars) - spacing
	if barWidth < 1 {
		barWidth = 1
	}

	bc := chart.BarChart{
		Title:        title,
		Width:        width,
		Height:       height,
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Bars: bars,
	}
	svg, err := renderSVG(title, func(buf *bytes.Buffer) error { return bc.Render(chart.SVG, buf) })
	if err != nil {
		return Figure{}, err
	}
	return Figure{Title: title, Width: width, Height: height, SVG: svg, Legend: legend}, nil
}

// SentimentLine строит линии средней оценки по датам, по одной на источник.
func (r *Renderer) SentimentLine(means []analysis.SentimentMean, sources []string) (Figure, error) {
	const title = "Sentiment Mean Over Time by News Source"
	if len(means) == 0 {
		return Figure{}, ErrNoData
	}

	type points struct {
		xs []time.Time
		ys []float64
	}
	bySource := make(map[string]*points)
	order := append([]string(nil), sources...)
	known := make(map[string]bool, len(sources))
	for _, s := range sources {
		known[s] = true
	}

	minX, maxX := means[0].Date, means[0].Date
	minY, maxY := means[0].Mean, means[0].Mean
	for _, m := range means {
		p, ok := bySource[m.Source]
		if !ok {
			p = &points{}
			bySource[m.Source] = p
			if !known[m.Source] {
				known[m.Source] = true
				order = append(order, m.Source)
			}
		}
		p.xs = append(p.xs, m.Date)
		p.ys = append(p.ys, m.Mean)

		if m.Date.Before(minX) {
			minX = m.Date
		}
		if m.Date.After(maxX) {
			maxX = m.Date
		}
		minY = math.Min(minY, m.Mean)
		maxY = math.Max(maxY, m.Mean)
	}

	var series []chart.Series
	legend := make([]LegendEntry, 0, len(order))
	for i, s := range order {
		p, ok := bySource[s]
		if !ok {
			continue
		}
		sw := pick(seriesPalette, i)
		series = append(series, chart.TimeSeries{
			Name:    s,
			XValues: p.xs,
			YValues: p.ys,
			Style: chart.Style{
				StrokeColor: sw.color(),
				StrokeWidth: 2,
				DotColor:    sw.color(),
				DotWidth:    3,
			},
		})
		legend = append(legend, LegendEntry{Name: s, Color: sw.css()})
	}

	// Нулевой диапазон по любой оси go-chart не рисует, поэтому расширяем его.
	if !maxX.After(minX) {
		minX, maxX = minX.Add(-day), maxX.Add(day)
	}
	if pad := (maxY - minY) * 0.1; pad > 0 {
		minY, maxY = minY-pad, maxY+pad
	} else {
		minY, maxY = minY-0.5, maxY+0.5
	}

	width, height := r.sizes.WideWidth, r.sizes.LineHeight
	c := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "date",
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minX), Max: chart.TimeToFloat64(maxX)},
		},
		YAxis: chart.YAxis{
			Name:  "score",
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}

	svg, err := renderSVG(title, func(buf *bytes.Buffer) error { return c.Render(chart.SVG, buf) })
	if err != nil {
		return Figure{}, err
	}
	return Figure{Title: title, Width: width, Height: height, SVG: svg, Legend: legend}, nil
}

func orderedKeys(idx map[string]int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[i] = k
	}
	return out
}
