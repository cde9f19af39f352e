package charts

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrEmptyChart is returned when asked to render a chart without rows
var ErrEmptyChart = errors.New("chart has no data")

const (
	renderWidth  = 1024
	renderHeight = 512
)

// RenderSVG draws the chart as SVG using the library's default styling.
// Line and grouped-bar charts are drawn as one continuous series per color group.
func RenderSVG(c Chart, w io.Writer) error {
	if c.IsEmpty() || len(c.Series) == 0 {
		return ErrEmptyChart
	}

	switch c.Kind {
	case KindPie:
		return renderPie(c, w)
	case KindBar:
		return renderBar(c, w)
	case KindLine, KindGroupedBar:
		return renderSeries(c, w)
	default:
		return fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
}

func renderPie(c Chart, w io.Writer) error {
	values := make([]chart.Value, 0, len(c.Series[0].Points))
	var total float64
	for _, p := range c.Series[0].Points {
		values = append(values, chart.Value{Label: p.Label, Value: p.Y})
		total += p.Y
	}
	// go-chart refuses a pie without a non-zero slice.
	if total == 0 {
		return ErrEmptyChart
	}

	pie := chart.PieChart{
		Title:  c.Title,
		Width:  renderHeight,
		Height: renderHeight,
		Values: values,
	}
	return pie.Render(chart.SVG, w)
}

func renderBar(c Chart, w io.Writer) error {
	bars := make([]chart.Value, 0, len(c.Series[0].Points))
	for _, p := range c.Series[0].Points {
		bars = append(bars, chart.Value{Label: p.Label, Value: p.Y})
	}

	bar := chart.BarChart{
		Title:      c.Title,
		Width:      renderWidth,
		Height:     renderHeight,
		BarWidth:   40,
		BarSpacing: 20,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY(c)},
		},
		Bars: bars,
	}
	return bar.Render(chart.SVG, w)
}

func renderSeries(c Chart, w io.Writer) error {
	ticks := make([]chart.Tick, 0, len(c.XTicks))
	for _, t := range c.XTicks {
		ticks = append(ticks, chart.Tick{Value: float64(t.Value), Label: t.Label})
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  renderWidth,
		Height: renderHeight,
		XAxis: chart.XAxis{
			Name:  c.Encoding.Category,
			Range: &chart.ContinuousRange{Min: 0, Max: 23},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  c.Encoding.Value,
			Range: &chart.ContinuousRange{Min: 0, Max: maxY(c)},
		},
	}

	for _, s := range c.Series {
		xs := make([]float64, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		})
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.SVG, w)
}

// maxY is the largest y value, or 1 when every value is zero
func maxY(c Chart) float64 {
	m := 0.0
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p.Y > m {
				m = p.Y
			}
		}
	}
	if m == 0 {
		return 1
	}
	return m
}
