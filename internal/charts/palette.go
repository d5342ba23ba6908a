package charts

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentiment_dashboard/internal/models"
)

// Qualitative Set3 (ColorBrewer), используется для секторов круговых диаграмм.
var set3 = []string{
	"8dd3c7", "ffffb3", "bebada", "fb8072", "80b1d3", "fdb462",
	"b3de69", "fccde5", "d9d9d9", "bc80bd", "ccebc5", "ffed6f",
}

// Палитра по умолчанию для источников новостей.
var seriesPalette = []string{
	"636efa", "ef553b", "00cc96", "ab63fa", "ffa15a",
	"19d3f3", "ff6692", "b6e880", "ff97ff", "fecb52",
}

// Фиксированные цвета меток на графике по датам.
var labelColors = map[string]string{
	models.LabelNeutral:  "0000ff",
	models.LabelPositive: "008000",
	models.LabelNegative: "ff0000",
}

type swatch string

func (s swatch) color() drawing.Color { return drawing.ColorFromHex(string(s)) }

func (s swatch) css() string { return "#" + string(s) }

func pick(palette []string, i int) swatch {
	return swatch(palette[i%len(palette)])
}

func labelSwatch(label string, fallback int) swatch {
	if hex, ok := labelColors[label]; ok {
		return swatch(hex)
	}
	return pick(seriesPalette, fallback)
}
