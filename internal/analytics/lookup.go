package analytics

import "bike-dashboard/internal/models"

// Lookup returns the detail for the first record on the given date, in load
// order. Several hourly rows share a date; only the first one is reported.
func Lookup(ds *models.Dataset, date models.CalendarDate) (models.DetailRecord, bool) {
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if !date.Matches(r) {
			continue
		}
		return models.DetailRecord{
			Date:        date.String(),
			BikeCount:   r.BikeCount,
			Temperature: r.Temperature,
			Wind:        r.Wind,
		}, true
	}
	return models.DetailRecord{}, false
}
