package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/pipeline"
)

func TestArrivalDate(t *testing.T) {
	got, err := pipeline.ArrivalDate(2016, "February", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2016, time.February, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := pipeline.ArrivalDate(2016, "February", 29); err != nil {
		t.Fatalf("leap day rejected: %v", err)
	}
}

func TestArrivalDate_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month string
		day   int
		col   string
	}{
		{"impossible day", 2016, "February", 30, domain.ColArrivalDate},
		{"non leap year", 2015, "February", 29, domain.ColArrivalDate},
		{"day zero", 2016, "March", 0, domain.ColArrivalDate},
		{"bad month", 2016, "Febuary", 1, domain.ColArrivalMonth},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := pipeline.ArrivalDate(c.year, c.month, c.day)
			if !errors.Is(err, domain.ErrMalformedValue) {
				t.Fatalf("expected malformed value, got %v", err)
			}
			var ve *domain.ValueError
			if !errors.As(err, &ve) || ve.Column != c.col {
				t.Fatalf("expected column %s, got %v", c.col, err)
			}
		})
	}
}

func TestMonthNumber(t *testing.T) {
	m, err := pipeline.MonthNumber("December")
	if err != nil || m != time.December {
		t.Fatalf("got %v %v", m, err)
	}
	if _, err := pipeline.MonthNumber("december"); err == nil {
		t.Fatalf("month names are case sensitive")
	}
}
