package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceDateLayout is the day/month/year layout used by the rental CSV.
// Day and month parse with or without a leading zero.
const SourceDateLayout = "2/1/2006"

// CalendarDateLayout is the year-month-day layout supplied by the date picker
const CalendarDateLayout = "2006-01-02"

// Holiday flag values
const (
	Holiday   = "Holiday"
	NoHoliday = "No Holiday"
)

// FunctioningYes marks an operational day
const FunctioningYes = "Yes"

// WeekDays lists weekday names Monday-first, indexed by ISO weekday - 1
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// HolidayFlags lists the holiday categories in chart order
var HolidayFlags = []string{Holiday, NoHoliday}

// MonthLabels are the tick labels for months 1..12
var MonthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// RentalRecord is one normalized hourly rental row with derived calendar fields.
// Only rows from operational days survive normalization.
type RentalRecord struct {
	Date           time.Time `json:"date" db:"rental_date"`
	BikeCount      int       `json:"bike_count" db:"bike_count"`
	Hour           int       `json:"hour" db:"hour"`
	Temperature    float64   `json:"temperature" db:"temperature_celsius"`
	Wind           float64   `json:"wind" db:"wind_speed_ms"`
	SolarRadiation float64   `json:"solar_radiation" db:"solar_radiation_mj"`
	Seasons        string    `json:"seasons" db:"season"`
	Holiday        string    `json:"holiday" db:"holiday"`
	FunctioningDay string    `json:"functioning_day" db:"functioning_day"`
	Month          int       `json:"month" db:"month"`
	Day            int       `json:"day" db:"day"`
	Year           int       `json:"year" db:"year"`
	WeekDay        string    `json:"week_day" db:"week_day"`
}

// RawRentalRecord holds the required columns of a single CSV row as text.
// Used during loading, before any value is parsed.
type RawRentalRecord struct {
	Row            int
	Date           string
	BikeCount      string
	Hour           string
	Temperature    string
	Wind           string
	SolarRadiation string
	Seasons        string
	Holiday        string
	FunctioningDay string
}

// ToRecord parses the raw columns and derives month, day, year and weekday.
// Date mismatches yield *ParseError; missing or non-numeric values yield *SchemaError.
func (r *RawRentalRecord) ToRecord() (*RentalRecord, error) {
	date, err := ParseSourceDate(r.Date)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Row = r.Row
		}
		return nil, err
	}

	count, err := r.parseInt("bikeCount", r.BikeCount)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, r.schemaError("bikeCount", r.BikeCount, "rented bike count must not be negative")
	}

	hour, err := r.parseInt("hour", r.Hour)
	if err != nil {
		return nil, err
	}
	if hour < 0 || hour > 23 {
		return nil, r.schemaError("hour", r.Hour, "hour must be between 0 and 23")
	}

	temperature, err := r.parseFloat("temperature", r.Temperature)
	if err != nil {
		return nil, err
	}

	wind, err := r.parseFloat("wind", r.Wind)
	if err != nil {
		return nil, err
	}

	solar, err := r.parseFloat("solarRadiation", r.SolarRadiation)
	if err != nil {
		return nil, err
	}

	categorical := []struct{ field, value string }{
		{"seasons", r.Seasons},
		{"holiday", r.Holiday},
		{"functioningDay", r.FunctioningDay},
	}
	for _, c := range categorical {
		if strings.TrimSpace(c.value) == "" {
			return nil, r.schemaError(c.field, c.value, "required value is missing")
		}
	}

	return &RentalRecord{
		Date:           date,
		BikeCount:      count,
		Hour:           hour,
		Temperature:    temperature,
		Wind:           wind,
		SolarRadiation: solar,
		Seasons:        strings.TrimSpace(r.Seasons),
		Holiday:        strings.TrimSpace(r.Holiday),
		FunctioningDay: strings.TrimSpace(r.FunctioningDay),
		Month:          int(date.Month()),
		Day:            date.Day(),
		Year:           date.Year(),
		WeekDay:        WeekDayName(date),
	}, nil
}

func (r *RawRentalRecord) parseInt(field, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, r.schemaError(field, value, "expected an integer value")
	}
	return v, nil
}

func (r *RawRentalRecord) parseFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, r.schemaError(field, value, "expected a numeric value")
	}
	return v, nil
}

func (r *RawRentalRecord) schemaError(field, value, message string) *SchemaError {
	return &SchemaError{Row: r.Row, Field: field, Value: value, Message: message}
}

// ParseSourceDate parses a dd/mm/yyyy date from the rental CSV
func ParseSourceDate(value string) (time.Time, error) {
	date, err := time.Parse(SourceDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ParseError{
			Field:   "date",
			Value:   value,
			Message: "invalid date format, expected DD/MM/YYYY",
		}
	}
	return date, nil
}

// WeekDayName maps a date to its Monday-first English weekday name
func WeekDayName(date time.Time) string {
	// time.Weekday is Sunday=0; shift so Monday=0.
	return WeekDays[(int(date.Weekday())+6)%7]
}

// IsWeekDay reports whether name is one of WeekDays
func IsWeekDay(name string) bool {
	for _, d := range WeekDays {
		if d == name {
			return true
		}
	}
	return false
}

// IsHolidayFlag reports whether flag is one of HolidayFlags
func IsHolidayFlag(flag string) bool {
	return flag == Holiday || flag == NoHoliday
}

// CalendarDate is a date as picked on the control surface
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// ParseCalendarDate parses a YYYY-MM-DD string
func ParseCalendarDate(value string) (CalendarDate, error) {
	t, err := time.Parse(CalendarDateLayout, strings.TrimSpace(value))
	if err != nil {
		return CalendarDate{}, &ParseError{
			Field:   "date",
			Value:   value,
			Message: "invalid date format, expected YYYY-MM-DD",
		}
	}
	return CalendarDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// String formats the date as YYYY-MM-DD
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Matches reports whether the record falls on this date
func (d CalendarDate) Matches(r RentalRecord) bool {
	return r.Year == d.Year && r.Month == d.Month && r.Day == d.Day
}

// DetailRecord is the detail panel content for a picked date
type DetailRecord struct {
	Date        string  `json:"date"`
	BikeCount   int     `json:"bike_count"`
	Temperature float64 `json:"temperature"`
	Wind        float64 `json:"wind"`
}
