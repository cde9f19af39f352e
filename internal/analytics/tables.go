package analytics

// SeasonTotal is one slice of the seasonal pie
type SeasonTotal struct {
	Season         string `json:"season"`
	TotalBikeCount int    `json:"total_bike_count"`
}

// MonthAverage is one bar of the monthly chart
type MonthAverage struct {
	Month        int     `json:"month"`
	AvgBikeCount float64 `json:"avg_bike_count"`
}

// WeekdayHourAverage is one point of the hourly-by-weekday line chart
type WeekdayHourAverage struct {
	WeekDay      string  `json:"week_day"`
	Hour         int     `json:"hour"`
	AvgBikeCount float64 `json:"avg_bike_count"`
}

// HolidayHourAverage is one bar of the hourly-by-holiday chart.
// Only the columns consumed downstream are averaged.
type HolidayHourAverage struct {
	Holiday        string  `json:"holiday"`
	Hour           int     `json:"hour"`
	AvgBikeCount   float64 `json:"avg_bike_count"`
	AvgTemperature float64 `json:"avg_temperature"`
	AvgWind        float64 `json:"avg_wind"`
}

// TemperatureBand is an inclusive temperature interval in °C.
// A band with Min > Max matches nothing.
type TemperatureBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether t lies within the band, bounds included
func (b TemperatureBand) Contains(t float64) bool {
	return t >= b.Min && t <= b.Max
}

// DefaultTemperatureBand is the slider's full range
var DefaultTemperatureBand = TemperatureBand{Min: -10, Max: 40}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
