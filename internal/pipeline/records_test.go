package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/pipeline"
)

func TestRecords(t *testing.T) {
	df := table(t,
		map[string]string{"arrival_date_month": "August", "arrival_date_day_of_month": "14", "reserved_room_type": "A", "assigned_room_type": "D"},
		map[string]string{"is_canceled": "1", "children": "2", "adr": "101.25"},
	)
	clean, err := pipeline.Clean(df)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	ds, err := pipeline.Records(clean)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(ds.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(ds.Bookings))
	}

	first := ds.Bookings[0]
	if !first.ArrivalDate.Equal(time.Date(2015, time.August, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("arrival date = %v", first.ArrivalDate)
	}
	if first.ReservedRoomType != "A" || first.AssignedRoomType != "D" {
		t.Fatalf("room types = %q/%q", first.ReservedRoomType, first.AssignedRoomType)
	}

	second := ds.Bookings[1]
	if second.IsCanceled != 1 || second.Children != 2 || second.ADR != 101.25 {
		t.Fatalf("unexpected second booking: %+v", second)
	}
	if second.Hotel != "Resort Hotel" || second.DepositType != "No Deposit" {
		t.Fatalf("text columns not carried: %+v", second)
	}
}

func TestRecords_InvalidDateNamesRow(t *testing.T) {
	df := table(t,
		map[string]string{},
		map[string]string{"arrival_date_month": "February", "arrival_date_day_of_month": "30"},
	)
	clean, err := pipeline.Clean(df)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	_, err = pipeline.Records(clean)
	var ve *domain.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected a value error, got %v", err)
	}
	if ve.Row != 1 || ve.Column != domain.ColArrivalDate {
		t.Fatalf("expected row 1 arrival_date, got row %d column %s", ve.Row, ve.Column)
	}
}

func TestRecords_FractionalCount(t *testing.T) {
	clean, err := pipeline.Clean(table(t, map[string]string{"adults": "1.5"}))
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := pipeline.Records(clean); !errors.Is(err, domain.ErrMalformedValue) {
		t.Fatalf("expected malformed value, got %v", err)
	}
}
