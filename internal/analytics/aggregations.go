// Package analytics turns the canonical rental records into chart tables.
// Every function here is pure: it reads the dataset and returns a fresh table.
package analytics

import (
	"sort"

	"bike-dashboard/internal/models"
)

// SeasonalTotals sums rentals per season for one year.
// Rows are ordered by season name; a year with no rows yields an empty table.
func SeasonalTotals(ds *models.Dataset, year int) []SeasonTotal {
	totals := make(map[string]int)
	ds.Each(func(r models.RentalRecord) {
		if r.Year == year {
			totals[r.Seasons] += r.BikeCount
		}
	})

	seasons := make([]string, 0, len(totals))
	for s := range totals {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)

	rows := make([]SeasonTotal, 0, len(seasons))
	for _, s := range seasons {
		rows = append(rows, SeasonTotal{Season: s, TotalBikeCount: totals[s]})
	}
	return rows
}

// MonthlyAverage averages rentals per calendar month with all years pooled.
// Rows are ordered by month.
func MonthlyAverage(ds *models.Dataset) []MonthAverage {
	var months [13]mean
	ds.Each(func(r models.RentalRecord) {
		months[r.Month].add(float64(r.BikeCount))
	})

	rows := make([]MonthAverage, 0, 12)
	for m := 1; m <= 12; m++ {
		if months[m].count == 0 {
			continue
		}
		rows = append(rows, MonthAverage{Month: m, AvgBikeCount: months[m].value()})
	}
	return rows
}

type weekdayHour struct {
	weekDay string
	hour    int
}

// HourlyByWeekday averages rentals per (weekday, hour) over records inside the
// temperature band, keeping only the active weekdays. Rows are ordered by
// weekday name, then hour. Hours absent from the filtered data are not filled.
func HourlyByWeekday(ds *models.Dataset, band TemperatureBand, activeWeekdays []string) []WeekdayHourAverage {
	active := toSet(activeWeekdays)
	if len(active) == 0 {
		return []WeekdayHourAverage{}
	}

	groups := make(map[weekdayHour]*mean)
	ds.Each(func(r models.RentalRecord) {
		if !band.Contains(r.Temperature) || !active[r.WeekDay] {
			return
		}
		key := weekdayHour{weekDay: r.WeekDay, hour: r.Hour}
		g, ok := groups[key]
		if !ok {
			g = &mean{}
			groups[key] = g
		}
		g.add(float64(r.BikeCount))
	})

	keys := make([]weekdayHour, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].weekDay != keys[j].weekDay {
			return keys[i].weekDay < keys[j].weekDay
		}
		return keys[i].hour < keys[j].hour
	})

	rows := make([]WeekdayHourAverage, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, WeekdayHourAverage{
			WeekDay:      k.weekDay,
			Hour:         k.hour,
			AvgBikeCount: groups[k].value(),
		})
	}
	return rows
}

type hourAccumulator struct {
	bikes       mean
	temperature mean
	wind        mean
}

// HourlyByHoliday averages rentals, temperature and wind per hour for each
// active holiday category, over records inside the temperature band.
// Holiday rows come first, then No Holiday rows, each ordered by hour.
func HourlyByHoliday(ds *models.Dataset, band TemperatureBand, activeFlags []string) []HolidayHourAverage {
	active := toSet(activeFlags)
	rows := make([]HolidayHourAverage, 0, 48)

	for _, flag := range models.HolidayFlags {
		if !active[flag] {
			continue
		}

		var hours [24]hourAccumulator
		ds.Each(func(r models.RentalRecord) {
			if r.Holiday != flag || !band.Contains(r.Temperature) {
				return
			}
			h := &hours[r.Hour]
			h.bikes.add(float64(r.BikeCount))
			h.temperature.add(r.Temperature)
			h.wind.add(r.Wind)
		})

		for hour, h := range hours {
			if h.bikes.count == 0 {
				continue
			}
			rows = append(rows, HolidayHourAverage{
				Holiday:        flag,
				Hour:           hour,
				AvgBikeCount:   h.bikes.value(),
				AvgTemperature: h.temperature.value(),
				AvgWind:        h.wind.value(),
			})
		}
	}
	return rows
}
