package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"expense-tracker/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartRenderer draws report rows as PNG images.
type ChartRenderer struct {
	Width  int
	Height int
}

func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Width: 800, Height: 800}
}

// CategoryPie draws one slice per category total, labelled with the amount
// and share. Categories with a stored hex color keep it.
func (r *ChartRenderer) CategoryPie(title string, rows []models.CategoryTotal) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoChartData
	}

	var total float64
	for _, row := range rows {
		total += row.Total.InexactFloat64()
	}

	values := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		amount := row.Total.InexactFloat64()
		v := chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", row.CategoryName, row.Total.StringFixed(2), amount/total*100),
			Value: amount,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		}
		if row.CategoryColor != nil {
			if c, ok := parseHexColor(*row.CategoryColor); ok {
				v.Style.FillColor = c
			}
		}
		values = append(values, v)
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// parseHexColor accepts "#rrggbb" or "rrggbb".
func parseHexColor(s string) (drawing.Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return drawing.Color{}, false
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return drawing.Color{}, false
	}
	return drawing.ColorFromHex(s), true
}
