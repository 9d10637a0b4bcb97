package pipeline_test

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"

	"hotel_bookings/internal/adapters/csvsource"
)

var header = []string{
	"hotel", "is_canceled", "lead_time", "arrival_date_year", "arrival_date_month",
	"arrival_date_week_number", "arrival_date_day_of_month", "stays_in_weekend_nights",
	"stays_in_week_nights", "adults", "children", "babies", "meal", "country",
	"market_segment", "distribution_channel", "is_repeated_guest", "previous_cancellations",
	"previous_bookings_not_canceled", "reserved_room_type", "assigned_room_type",
	"booking_changes", "deposit_type", "agent", "company", "days_in_waiting_list",
	"customer_type", "adr", "required_car_parking_spaces", "total_of_special_requests",
	"reservation_status", "reservation_status_date",
}

var defaults = map[string]string{
	"hotel": "Resort Hotel", "is_canceled": "0", "lead_time": "342", "arrival_date_year": "2015",
	"arrival_date_month": "July", "arrival_date_week_number": "27", "arrival_date_day_of_month": "1",
	"stays_in_weekend_nights": "0", "stays_in_week_nights": "2", "adults": "2", "children": "0",
	"babies": "0", "meal": "BB", "country": "PRT", "market_segment": "Direct",
	"distribution_channel": "Direct", "is_repeated_guest": "0", "previous_cancellations": "0",
	"previous_bookings_not_canceled": "0", "reserved_room_type": "C", "assigned_room_type": "C",
	"booking_changes": "3", "deposit_type": "No Deposit", "agent": "NULL", "company": "NULL",
	"days_in_waiting_list": "0", "customer_type": "Transient", "adr": "75.5",
	"required_car_parking_spaces": "0", "total_of_special_requests": "0",
	"reservation_status": "Check-Out", "reservation_status_date": "2015-07-03",
}

func row(over map[string]string) string {
	cells := make([]string, len(header))
	for i, h := range header {
		v, ok := over[h]
		if !ok {
			v = defaults[h]
		}
		cells[i] = v
	}
	return strings.Join(cells, ",")
}

func table(t *testing.T, rows ...map[string]string) dataframe.DataFrame {
	t.Helper()
	lines := []string{strings.Join(header, ",")}
	for _, r := range rows {
		lines = append(lines, row(r))
	}
	df, err := csvsource.Read(strings.NewReader(strings.Join(lines, "\n")+"\n"), ',')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return df
}
