package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bike-dashboard/internal/models"
)

func record(date string, hour, count int, temp, wind float64, season, holiday string) models.RentalRecord {
	d, err := time.Parse(models.CalendarDateLayout, date)
	if err != nil {
		panic(err)
	}
	return models.RentalRecord{
		Date:           d,
		BikeCount:      count,
		Hour:           hour,
		Temperature:    temp,
		Wind:           wind,
		Seasons:        season,
		Holiday:        holiday,
		FunctioningDay: models.FunctioningYes,
		Month:          int(d.Month()),
		Day:            d.Day(),
		Year:           d.Year(),
		WeekDay:        models.WeekDayName(d),
	}
}

// fixture covers two years, all four seasons, both holiday flags and repeated dates.
func fixture() *models.Dataset {
	return models.NewDataset([]models.RentalRecord{
		record("2017-12-01", 0, 254, -5.2, 2.2, "Winter", models.NoHoliday), // Friday
		record("2017-12-01", 1, 204, -5.5, 0.8, "Winter", models.NoHoliday),
		record("2017-12-25", 8, 100, -3.0, 1.0, "Winter", models.Holiday), // Monday
		record("2018-01-01", 8, 50, -8.0, 1.5, "Winter", models.Holiday),  // Monday
		record("2018-03-05", 8, 400, 6.0, 2.0, "Spring", models.NoHoliday), // Monday
		record("2018-03-05", 9, 500, 7.0, 2.5, "Spring", models.NoHoliday),
		record("2018-06-01", 5, 120, 22.5, 1.3, "Summer", models.NoHoliday), // Friday
		record("2018-06-08", 5, 180, 24.5, 0.7, "Summer", models.NoHoliday), // Friday
		record("2018-06-06", 5, 90, 23.0, 1.1, "Summer", models.Holiday),    // Wednesday
		record("2018-10-03", 18, 1500, 15.0, 1.9, "Autumn", models.Holiday), // Wednesday
		record("2018-12-01", 18, 300, 1.0, 3.0, "Winter", models.NoHoliday), // Saturday
	}, "fixture", time.Unix(0, 0))
}

func sumForYear(ds *models.Dataset, year int) int {
	total := 0
	ds.Each(func(r models.RentalRecord) {
		if r.Year == year {
			total += r.BikeCount
		}
	})
	return total
}

func TestSeasonalTotals(t *testing.T) {
	ds := fixture()

	rows := SeasonalTotals(ds, 2018)
	assert.Equal(t, []SeasonTotal{
		{Season: "Autumn", TotalBikeCount: 1500},
		{Season: "Spring", TotalBikeCount: 900},
		{Season: "Summer", TotalBikeCount: 390},
		{Season: "Winter", TotalBikeCount: 350},
	}, rows)

	for _, year := range []int{2017, 2018} {
		total := 0
		for _, r := range SeasonalTotals(ds, year) {
			total += r.TotalBikeCount
		}
		assert.Equal(t, sumForYear(ds, year), total, "conservation for %d", year)
	}
}

func TestSeasonalTotals_UnknownYear(t *testing.T) {
	rows := SeasonalTotals(fixture(), 1999)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMonthlyAverage(t *testing.T) {
	rows := MonthlyAverage(fixture())

	require.LessOrEqual(t, len(rows), 12)
	for i, r := range rows {
		assert.GreaterOrEqual(t, r.Month, 1)
		assert.LessOrEqual(t, r.Month, 12)
		if i > 0 {
			assert.Greater(t, r.Month, rows[i-1].Month)
		}
	}

	assert.Equal(t, []MonthAverage{
		{Month: 1, AvgBikeCount: 50},
		{Month: 3, AvgBikeCount: 450},
		{Month: 6, AvgBikeCount: 130},
		{Month: 10, AvgBikeCount: 1500},
		// December pools 2017 and 2018: (254+204+100+300)/4
		{Month: 12, AvgBikeCount: 214.5},
	}, rows)
}

func TestHourlyByWeekday(t *testing.T) {
	ds := fixture()

	rows := HourlyByWeekday(ds, DefaultTemperatureBand, models.WeekDays)
	assert.Equal(t, []WeekdayHourAverage{
		{WeekDay: "Friday", Hour: 0, AvgBikeCount: 254},
		{WeekDay: "Friday", Hour: 1, AvgBikeCount: 204},
		{WeekDay: "Friday", Hour: 5, AvgBikeCount: 150},
		{WeekDay: "Monday", Hour: 8, AvgBikeCount: (100 + 50 + 400) / 3.0},
		{WeekDay: "Monday", Hour: 9, AvgBikeCount: 500},
		{WeekDay: "Saturday", Hour: 18, AvgBikeCount: 300},
		{WeekDay: "Wednesday", Hour: 5, AvgBikeCount: 90},
		{WeekDay: "Wednesday", Hour: 18, AvgBikeCount: 1500},
	}, rows)
}

func TestHourlyByWeekday_TemperatureBandInclusive(t *testing.T) {
	rows := HourlyByWeekday(fixture(), TemperatureBand{Min: 22.5, Max: 24.5}, []string{"Friday"})
	assert.Equal(t, []WeekdayHourAverage{
		{WeekDay: "Friday", Hour: 5, AvgBikeCount: 150},
	}, rows)
}

func TestHourlyByWeekday_EmptySelections(t *testing.T) {
	ds := fixture()

	bands := []TemperatureBand{DefaultTemperatureBand, {Min: 0, Max: 0}, {Min: 30, Max: -30}}
	for _, band := range bands {
		rows := HourlyByWeekday(ds, band, nil)
		require.NotNil(t, rows)
		assert.Empty(t, rows)
	}

	assert.Empty(t, HourlyByWeekday(ds, TemperatureBand{Min: 40, Max: -10}, models.WeekDays))
}

func TestHourlyByWeekday_MonotoneUnderInclusion(t *testing.T) {
	ds := fixture()
	small := []string{"Monday"}
	large := []string{"Monday", "Friday", "Sunday"}

	smallRows := HourlyByWeekday(ds, DefaultTemperatureBand, small)
	largeRows := HourlyByWeekday(ds, DefaultTemperatureBand, large)

	require.NotEmpty(t, smallRows)
	for _, r := range smallRows {
		assert.Contains(t, largeRows, r)
	}
}

func TestHourlyByHoliday(t *testing.T) {
	ds := fixture()

	rows := HourlyByHoliday(ds, DefaultTemperatureBand, []string{models.NoHoliday, models.Holiday})
	require.NotEmpty(t, rows)
	assert.LessOrEqual(t, len(rows), 48)

	assert.Equal(t, HolidayHourAverage{
		Holiday: models.Holiday, Hour: 5, AvgBikeCount: 90, AvgTemperature: 23.0, AvgWind: 1.1,
	}, rows[0])

	// Holiday group precedes No Holiday group, hours ascending within each.
	seenNoHoliday := false
	for i, r := range rows {
		if r.Holiday == models.NoHoliday {
			seenNoHoliday = true
		} else {
			assert.False(t, seenNoHoliday, "Holiday row after No Holiday rows at %d", i)
		}
		if i > 0 && rows[i-1].Holiday == r.Holiday {
			assert.Greater(t, r.Hour, rows[i-1].Hour)
		}
	}

	var morning HolidayHourAverage
	for _, r := range rows {
		if r.Holiday == models.Holiday && r.Hour == 8 {
			morning = r
		}
	}
	assert.Equal(t, 75.0, morning.AvgBikeCount)
	assert.InDelta(t, -5.5, morning.AvgTemperature, 1e-9)
	assert.InDelta(t, 1.25, morning.AvgWind, 1e-9)
}

func TestHourlyByHoliday_FlagSubset(t *testing.T) {
	ds := fixture()

	rows := HourlyByHoliday(ds, DefaultTemperatureBand, []string{models.Holiday})
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.Equal(t, models.Holiday, r.Holiday)
	}

	assert.Empty(t, HourlyByHoliday(ds, DefaultTemperatureBand, nil))
	assert.Empty(t, HourlyByHoliday(ds, DefaultTemperatureBand, []string{"Weekend"}))
	assert.Empty(t, HourlyByHoliday(ds, TemperatureBand{Min: 10, Max: 5}, models.HolidayFlags))
}

func TestAggregations_EmptyDataset(t *testing.T) {
	ds := models.NewDataset(nil, "empty", time.Unix(0, 0))

	assert.Empty(t, SeasonalTotals(ds, 2018))
	assert.Empty(t, MonthlyAverage(ds))
	assert.Empty(t, HourlyByWeekday(ds, DefaultTemperatureBand, models.WeekDays))
	assert.Empty(t, HourlyByHoliday(ds, DefaultTemperatureBand, models.HolidayFlags))
}

func TestAggregations_Idempotent(t *testing.T) {
	ds := fixture()

	encode := func(v any) string {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return string(b)
	}

	assert.Equal(t, encode(SeasonalTotals(ds, 2018)), encode(SeasonalTotals(ds, 2018)))
	assert.Equal(t, encode(MonthlyAverage(ds)), encode(MonthlyAverage(ds)))
	assert.Equal(t,
		encode(HourlyByWeekday(ds, DefaultTemperatureBand, models.WeekDays)),
		encode(HourlyByWeekday(ds, DefaultTemperatureBand, models.WeekDays)))
	assert.Equal(t,
		encode(HourlyByHoliday(ds, DefaultTemperatureBand, models.HolidayFlags)),
		encode(HourlyByHoliday(ds, DefaultTemperatureBand, models.HolidayFlags)))
}

func TestSingleRowScenario(t *testing.T) {
	ds := models.NewDataset([]models.RentalRecord{
		record("2018-06-01", 5, 120, 22.5, 1.3, "Summer", models.NoHoliday),
	}, "scenario", time.Unix(0, 0))

	assert.Equal(t, []SeasonTotal{{Season: "Summer", TotalBikeCount: 120}}, SeasonalTotals(ds, 2018))

	detail, ok := Lookup(ds, models.CalendarDate{Year: 2018, Month: 6, Day: 1})
	require.True(t, ok)
	assert.Equal(t, 120, detail.BikeCount)
	assert.Equal(t, 22.5, detail.Temperature)
	assert.Equal(t, 1.3, detail.Wind)

	// 2018-06-01 is a Friday.
	assert.Equal(t, []WeekdayHourAverage{{WeekDay: "Friday", Hour: 5, AvgBikeCount: 120}},
		HourlyByWeekday(ds, TemperatureBand{Min: 20, Max: 25}, []string{"Friday"}))
}
