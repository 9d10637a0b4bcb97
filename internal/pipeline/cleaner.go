// Package pipeline holds the cleaning and feature engineering shared by the
// trainer and the prediction path.
package pipeline

import (
	"errors"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/domain"
)

const MaxADR = 5000.0

// droppedColumns are identifier-only columns not used downstream.
var droppedColumns = []string{domain.ColAgent, domain.ColCompany}

var cleanerColumns = []string{
	domain.ColAgent, domain.ColCompany, domain.ColADR,
	domain.ColMarketSegment, domain.ColMeal, domain.ColCountry,
}

var ErrNoCompleteRows = errors.New("clean: no complete rows remain")

// Clean returns a copy of df with the identifier columns dropped, invalid
// rates nulled, meal and country repaired and every incomplete row removed.
func Clean(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := requireColumns(df.Names(), cleanerColumns); err != nil {
		return dataframe.DataFrame{}, err
	}
	rawRows := df.Nrow()

	df = df.Drop(droppedColumns)
	df = df.Mutate(nullInvalidRates(df.Col(domain.ColADR), df.Col(domain.ColMarketSegment)))
	df = df.Mutate(mapStrings(df.Col(domain.ColMeal), func(v string, na bool) string {
		if na {
			return domain.MealSelfCatering
		}
		return v
	}))
	df = df.Mutate(mapStrings(df.Col(domain.ColCountry), func(v string, na bool) string {
		if na {
			return "NaN"
		}
		if v == "CN" {
			return "CAN"
		}
		return v
	}))
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}

	keep := completeRows(df)
	if len(keep) == 0 {
		return dataframe.DataFrame{}, ErrNoCompleteRows
	}
	out := df.Subset(keep)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	log.Info().
		Int("rows", out.Nrow()).
		Int("dropped", rawRows-out.Nrow()).
		Msg("bookings cleaned")
	return out, nil
}

// ValidRate reports whether adr is a plausible nightly rate for segment.
func ValidRate(adr float64, segment string) bool {
	if math.IsNaN(adr) || adr < 0 || adr > MaxADR {
		return false
	}
	return adr != 0 || segment == domain.SegmentComplementary
}

func nullInvalidRates(adr, segment series.Series) series.Series {
	out := make([]float64, adr.Len())
	for i := range out {
		e := adr.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		v := e.Float()
		seg := segment.Elem(i)
		// an unknown segment cannot prove a zero rate wrong; the row goes
		// later with the rest of the incomplete ones
		if v == 0 && seg.IsNA() {
			out[i] = v
			continue
		}
		if !ValidRate(v, seg.String()) {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return series.New(out, series.Float, adr.Name)
}

// mapStrings rewrites a string column. Returning "NaN" keeps the cell null.
func mapStrings(s series.Series, fn func(v string, na bool) string) series.Series {
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = fn("", true)
			continue
		}
		out[i] = fn(e.String(), false)
	}
	return series.New(out, series.String, s.Name)
}

func completeRows(df dataframe.DataFrame) []int {
	na := make([]bool, df.Nrow())
	for _, name := range df.Names() {
		for i, v := range df.Col(name).IsNaN() {
			if v {
				na[i] = true
			}
		}
	}
	keep := make([]int, 0, len(na))
	for i, v := range na {
		if !v {
			keep = append(keep, i)
		}
	}
	return keep
}

func requireColumns(have, want []string) error {
	set := make(map[string]struct{}, len(have))
	for _, n := range have {
		set[n] = struct{}{}
	}
	var missing []string
	for _, n := range want {
		if _, ok := set[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}
	return nil
}
