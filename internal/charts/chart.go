// Package charts describes chart tables declaratively for a rendering surface:
// the chart kind, which fields encode category, value and color, and the
// series derived from the table rows.
package charts

import (
	"strconv"

	"bike-dashboard/internal/analytics"
	"bike-dashboard/internal/models"
)

// Kind is the declared chart type
type Kind string

const (
	KindPie        Kind = "pie"
	KindBar        Kind = "bar"
	KindGroupedBar Kind = "grouped-bar"
	KindLine       Kind = "line"
)

// Chart identifiers, also used as URL path segments
const (
	SeasonsChart       = "seasons"
	MonthlyChart       = "monthly"
	HourlyWeekdayChart = "hourly-weekday"
	HourlyHolidayChart = "hourly-holiday"
)

// Encoding names the row fields used for each visual channel
type Encoding struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Color    string `json:"color,omitempty"`
}

// Tick is an x-axis tick
type Tick struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Point is a single encoded data point
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Series is one color group of points
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart is a chart table plus its declarative descriptor
type Chart struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     Kind     `json:"kind"`
	Encoding Encoding `json:"encoding"`
	XTicks   []Tick   `json:"x_ticks,omitempty"`
	Rows     any      `json:"rows"`
	RowCount int      `json:"row_count"`
	Series   []Series `json:"series"`
}

// IsEmpty reports whether the chart table has no rows
func (c Chart) IsEmpty() bool {
	return c.RowCount == 0
}

// SeasonsPie builds the seasonal share pie
func SeasonsPie(rows []analytics.SeasonTotal) Chart {
	points := make([]Point, 0, len(rows))
	for i, r := range rows {
		points = append(points, Point{Label: r.Season, X: float64(i), Y: float64(r.TotalBikeCount)})
	}

	return Chart{
		ID:       SeasonsChart,
		Title:    "Bike Rent / Seasons",
		Kind:     KindPie,
		Encoding: Encoding{Category: "season", Value: "total_bike_count"},
		Rows:     rows,
		RowCount: len(rows),
		Series:   singleSeries("Bike Rent", points),
	}
}

// MonthlyBar builds the monthly average bar chart with Jan..Dec ticks
func MonthlyBar(rows []analytics.MonthAverage) Chart {
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, Point{Label: models.MonthLabels[r.Month-1], X: float64(r.Month), Y: r.AvgBikeCount})
	}

	ticks := make([]Tick, 0, 12)
	for m := 1; m <= 12; m++ {
		ticks = append(ticks, Tick{Value: m, Label: models.MonthLabels[m-1]})
	}

	return Chart{
		ID:       MonthlyChart,
		Title:    "Bike Rents / Month",
		Kind:     KindBar,
		Encoding: Encoding{Category: "month", Value: "avg_bike_count"},
		XTicks:   ticks,
		Rows:     rows,
		RowCount: len(rows),
		Series:   singleSeries("Bike Rents", points),
	}
}

// WeekdayLine builds the hourly line chart with one line per weekday
func WeekdayLine(rows []analytics.WeekdayHourAverage) Chart {
	b := newSeriesBuilder()
	for _, r := range rows {
		b.add(r.WeekDay, Point{Label: strconv.Itoa(r.Hour), X: float64(r.Hour), Y: r.AvgBikeCount})
	}

	return Chart{
		ID:       HourlyWeekdayChart,
		Title:    "Bike rents vs. Hours through the week",
		Kind:     KindLine,
		Encoding: Encoding{Category: "hour", Value: "avg_bike_count", Color: "week_day"},
		XTicks:   hourTicks(),
		Rows:     rows,
		RowCount: len(rows),
		Series:   b.series(),
	}
}

// HolidayGroupedBar builds the hourly grouped bar chart split by holiday flag
func HolidayGroupedBar(rows []analytics.HolidayHourAverage) Chart {
	b := newSeriesBuilder()
	for _, r := range rows {
		b.add(r.Holiday, Point{Label: strconv.Itoa(r.Hour), X: float64(r.Hour), Y: r.AvgBikeCount})
	}

	return Chart{
		ID:       HourlyHolidayChart,
		Title:    "Bike rents vs. Hours at working days and holidays",
		Kind:     KindGroupedBar,
		Encoding: Encoding{Category: "hour", Value: "avg_bike_count", Color: "holiday"},
		XTicks:   hourTicks(),
		Rows:     rows,
		RowCount: len(rows),
		Series:   b.series(),
	}
}

func singleSeries(name string, points []Point) []Series {
	if len(points) == 0 {
		return []Series{}
	}
	return []Series{{Name: name, Points: points}}
}

func hourTicks() []Tick {
	ticks := make([]Tick, 0, 24)
	for h := 0; h < 24; h++ {
		ticks = append(ticks, Tick{Value: h, Label: strconv.Itoa(h)})
	}
	return ticks
}

// seriesBuilder groups points by color key, keeping first-seen order
type seriesBuilder struct {
	order  []string
	points map[string][]Point
}

func newSeriesBuilder() *seriesBuilder {
	return &seriesBuilder{points: make(map[string][]Point)}
}

func (b *seriesBuilder) add(key string, p Point) {
	if _, ok := b.points[key]; !ok {
		b.order = append(b.order, key)
	}
	b.points[key] = append(b.points[key], p)
}

func (b *seriesBuilder) series() []Series {
	out := make([]Series, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, Series{Name: key, Points: b.points[key]})
	}
	return out
}
