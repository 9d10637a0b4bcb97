package pipeline

import (
	"fmt"
	"time"

	"hotel_bookings/internal/domain"
)

var months = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// MonthNumber resolves one of the twelve English month names.
func MonthNumber(name string) (time.Month, error) {
	m, ok := months[name]
	if !ok {
		return 0, &domain.ValueError{Row: -1, Column: domain.ColArrivalMonth, Value: name, Reason: "unrecognized month"}
	}
	return m, nil
}

// ArrivalDate composes year, month name and day of month into a calendar
// date. Impossible dates such as 30 February are rejected.
func ArrivalDate(year int, month string, day int) (time.Time, error) {
	m, err := MonthNumber(month)
	if err != nil {
		return time.Time{}, err
	}
	raw := fmt.Sprintf("%d-%02d-%02d", year, int(m), day)
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, &domain.ValueError{Row: -1, Column: domain.ColArrivalDate, Value: raw, Reason: "not a calendar date"}
	}
	return t, nil
}
