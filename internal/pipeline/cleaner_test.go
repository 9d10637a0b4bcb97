package pipeline_test

import (
	"errors"
	"math"
	"testing"

	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/pipeline"
)

func TestClean_EndToEnd(t *testing.T) {
	df := table(t,
		map[string]string{"country": "PRT"},
		map[string]string{"country": "GBR", "adr": "-50"},
		map[string]string{"country": "GBR", "meal": "NA"},
		map[string]string{"country": "CN"},
		map[string]string{"adr": "0"},
		map[string]string{"adr": "0", "market_segment": "Complementary"},
		map[string]string{"adr": "5001"},
		map[string]string{"children": "NA"},
		map[string]string{"distribution_channel": "Undefined"},
	)

	out, err := pipeline.Clean(df)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if out.Nrow() != 4 {
		t.Fatalf("expected 4 rows, got %d", out.Nrow())
	}
	for _, n := range out.Names() {
		if n == domain.ColAgent || n == domain.ColCompany {
			t.Fatalf("column %s should be dropped", n)
		}
		for i, na := range out.Col(n).IsNaN() {
			if na {
				t.Fatalf("null left in %s row %d", n, i)
			}
		}
	}

	meals := out.Col(domain.ColMeal).Records()
	countries := out.Col(domain.ColCountry).Records()
	if meals[1] != domain.MealSelfCatering {
		t.Fatalf("expected imputed meal SC, got %q", meals[1])
	}
	if countries[1] != "GBR" {
		t.Fatalf("expected only the imputed GBR row to survive, got %v", countries)
	}
	if countries[2] != "CAN" {
		t.Fatalf("expected CN rewritten to CAN, got %q", countries[2])
	}

	adr := out.Col(domain.ColADR).Float()
	segments := out.Col(domain.ColMarketSegment).Records()
	for i, v := range adr {
		if math.IsNaN(v) || v < 0 || v > pipeline.MaxADR {
			t.Fatalf("row %d: adr %v out of range", i, v)
		}
		if v == 0 && segments[i] != domain.SegmentComplementary {
			t.Fatalf("row %d: zero rate outside Complementary", i)
		}
	}
}

func TestClean_SchemaMismatch(t *testing.T) {
	df := table(t, map[string]string{}).Drop([]string{domain.ColMeal, domain.ColAgent})

	_, err := pipeline.Clean(df)
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	var se *domain.SchemaError
	if !errors.As(err, &se) || len(se.Missing) != 2 {
		t.Fatalf("expected two missing columns, got %v", err)
	}
}

func TestClean_NoCompleteRows(t *testing.T) {
	df := table(t, map[string]string{"adr": "-1"})
	if _, err := pipeline.Clean(df); !errors.Is(err, pipeline.ErrNoCompleteRows) {
		t.Fatalf("expected ErrNoCompleteRows, got %v", err)
	}
}

func TestValidRate(t *testing.T) {
	cases := []struct {
		adr     float64
		segment string
		want    bool
	}{
		{-0.01, "Direct", false},
		{0, "Direct", false},
		{0, "Complementary", true},
		{5000, "Online TA", true},
		{5000.5, "Online TA", false},
		{math.NaN(), "Direct", false},
	}
	for _, c := range cases {
		if got := pipeline.ValidRate(c.adr, c.segment); got != c.want {
			t.Errorf("ValidRate(%v, %q) = %v, want %v", c.adr, c.segment, got, c.want)
		}
	}
}
