package app_test

import (
	"errors"
	"testing"

	"hotel_bookings/internal/app"
	"hotel_bookings/internal/domain"
)

func TestMapBookingForm_FlexibleNumbers(t *testing.T) {
	f := form()
	f[domain.ColADR] = "95,5"
	f[domain.ColLeadTime] = []string{" 12 "}
	f[domain.ColAdults] = 3
	in, err := app.MapBookingForm(f)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if in.ADR != 95.5 || in.LeadTime != 12 || in.Adults != 3 {
		t.Fatalf("parsed %+v", in)
	}
	if b := in.Booking(); b.Country != "PRT" || b.ADR != 95.5 {
		t.Fatalf("booking %+v", b)
	}
}

func TestMapBookingForm_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		col    string
		val    any
		column string
	}{
		{"out of range", domain.ColLeadTime, 800.0, domain.ColLeadTime},
		{"below range", domain.ColArrivalWeekNumber, 0.0, domain.ColArrivalWeekNumber},
		{"fractional count", domain.ColAdults, 1.5, domain.ColAdults},
		{"not a number", domain.ColADR, "cheap", domain.ColADR},
		{"empty category", domain.ColMeal, "", domain.ColMeal},
		{"wrong type", domain.ColHotel, 3.0, domain.ColHotel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := form()
			f[tc.col] = tc.val
			_, err := app.MapBookingForm(f)
			var ve *domain.ValueError
			if !errors.As(err, &ve) || ve.Column != tc.column || ve.Row != -1 {
				t.Fatalf("expected a value error on %s, got %v", tc.column, err)
			}
			if !errors.Is(err, domain.ErrMalformedValue) {
				t.Fatalf("should match ErrMalformedValue: %v", err)
			}
		})
	}
}

func TestCanonical_Stable(t *testing.T) {
	a, err := app.MapBookingForm(form())
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	f := form()
	f[domain.ColADR] = "95"
	b, err := app.MapBookingForm(f)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	_, ka, _ := a.Canonical()
	_, kb, _ := b.Canonical()
	if ka != kb {
		t.Fatalf("equal inputs should hash equally")
	}
	f[domain.ColADR] = 96.0
	c, _ := app.MapBookingForm(f)
	if _, kc, _ := c.Canonical(); kc == ka {
		t.Fatalf("different inputs should hash differently")
	}
}

func TestFormColumnsAndBounds(t *testing.T) {
	if len(app.FormColumns) != 24 {
		t.Fatalf("expected 24 form columns, got %d", len(app.FormColumns))
	}
	bounds := app.FormBounds()
	if b := bounds[domain.ColADR]; b.Max != 5400 {
		t.Fatalf("adr bound %+v", b)
	}
	if b := bounds[domain.ColIsRepeatedGuest]; b.Min != 0 || b.Max != 1 {
		t.Fatalf("repeated guest bound %+v", b)
	}
	if _, ok := bounds[domain.ColHotel]; ok {
		t.Fatalf("categorical columns have no bound")
	}
}
