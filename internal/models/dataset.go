package models

import (
	"sort"
	"time"
)

// Dataset is the canonical record set, built once at startup and read-only after.
// Records are kept in source order (post-filter). Accessors hand out copies.
type Dataset struct {
	records  []RentalRecord
	loadedAt time.Time
	source   string
}

// NewDataset copies records into a new immutable Dataset
func NewDataset(records []RentalRecord, source string, loadedAt time.Time) *Dataset {
	owned := make([]RentalRecord, len(records))
	copy(owned, records)

	return &Dataset{
		records:  owned,
		loadedAt: loadedAt,
		source:   source,
	}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns a copy of the i-th record
func (d *Dataset) At(i int) RentalRecord {
	return d.records[i]
}

// Each calls fn for every record in load order
func (d *Dataset) Each(fn func(RentalRecord)) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		fn(r)
	}
}

// Records returns a copy of all records
func (d *Dataset) Records() []RentalRecord {
	if d == nil {
		return nil
	}
	out := make([]RentalRecord, len(d.records))
	copy(out, d.records)
	return out
}

// LoadedAt returns when the dataset was built
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Source describes where the dataset was loaded from
func (d *Dataset) Source() string {
	return d.source
}

// DatasetSummary describes a loaded dataset
type DatasetSummary struct {
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	Years     []int     `json:"years"`
	FirstDate string    `json:"first_date,omitempty"`
	LastDate  string    `json:"last_date,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Summary reports record count, distinct years and the covered date range
func (d *Dataset) Summary() DatasetSummary {
	summary := DatasetSummary{
		Source:   d.source,
		Records:  len(d.records),
		Years:    []int{},
		LoadedAt: d.loadedAt,
	}
	if len(d.records) == 0 {
		return summary
	}

	years := make(map[int]bool)
	first, last := d.records[0].Date, d.records[0].Date
	for _, r := range d.records {
		years[r.Year] = true
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}

	for y := range years {
		summary.Years = append(summary.Years, y)
	}
	sort.Ints(summary.Years)

	summary.FirstDate = first.Format(CalendarDateLayout)
	summary.LastDate = last.Format(CalendarDateLayout)
	return summary
}
