package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"hotel_bookings/internal/adapters/geo"
	"hotel_bookings/internal/domain"
)

// PriceBandQuantiles are the adr cut points of the five rate bands.
var PriceBandQuantiles = []float64{0.2, 0.4, 0.6, 0.8}

// tally accumulates a booking count and the canceled share of it.
type tally struct {
	n, canceled int
	adr         []float64
}

func (t *tally) add(b domain.Booking) {
	t.n++
	t.canceled += b.IsCanceled
	t.adr = append(t.adr, b.ADR)
}

func (t *tally) rate() float64 {
	if t.n == 0 {
		return 0
	}
	return float64(t.canceled) / float64(t.n)
}

func (s *QueryService) Summary(ctx context.Context) (domain.Summary, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	var all tally
	byHotel := map[string]*tally{}
	for _, b := range ds.Bookings {
		all.add(b)
		t := byHotel[b.Hotel]
		if t == nil {
			t = &tally{}
			byHotel[b.Hotel] = t
		}
		t.add(b)
	}
	out := domain.Summary{
		Rows:             len(ds.Bookings),
		Columns:          len(ds.Columns),
		CancellationRate: all.rate(),
		Hotels:           make([]domain.HotelSummary, 0, len(byHotel)),
	}
	for _, h := range sortedKeys(byHotel) {
		t := byHotel[h]
		out.Hotels = append(out.Hotels, domain.HotelSummary{
			Hotel:            h,
			Bookings:         t.n,
			CancellationRate: t.rate(),
			MedianADR:        median(t.adr),
		})
	}
	return out, nil
}

// PriceBands splits bookings into adr quintiles and reports the cancellation
// rate of every (band, hotel) cell. Repeated cut points are merged.
func (s *QueryService) PriceBands(ctx context.Context) (domain.PriceBands, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.PriceBands{}, err
	}
	if len(ds.Bookings) == 0 {
		return domain.PriceBands{Edges: []float64{}, Bands: []domain.PriceBand{}}, nil
	}
	adr := make([]float64, len(ds.Bookings))
	for i, b := range ds.Bookings {
		adr[i] = b.ADR
	}
	sort.Float64s(adr)

	var edges []float64
	for _, q := range PriceBandQuantiles {
		e := stat.Quantile(q, stat.LinInterp, adr, nil)
		if len(edges) > 0 && e <= edges[len(edges)-1] {
			continue
		}
		edges = append(edges, e)
	}
	labels := bandLabels(adr[0], adr[len(adr)-1], edges)

	type cell struct {
		band  int
		hotel string
	}
	cells := map[cell]*tally{}
	for _, b := range ds.Bookings {
		k := cell{band: bandOf(b.ADR, edges), hotel: b.Hotel}
		t := cells[k]
		if t == nil {
			t = &tally{}
			cells[k] = t
		}
		t.add(b)
	}
	keys := make([]cell, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].band != keys[j].band {
			return keys[i].band < keys[j].band
		}
		return keys[i].hotel < keys[j].hotel
	})
	out := domain.PriceBands{Edges: edges, Bands: make([]domain.PriceBand, 0, len(keys))}
	for _, k := range keys {
		t := cells[k]
		out.Bands = append(out.Bands, domain.PriceBand{
			Band:             labels[k.band],
			Hotel:            k.hotel,
			Bookings:         t.n,
			CancellationRate: t.rate(),
		})
	}
	return out, nil
}

// MonthlyADR is the mean adr per hotel per arrival month.
func (s *QueryService) MonthlyADR(ctx context.Context) ([]domain.MonthlyADR, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	type cell struct{ hotel, month string }
	cells := map[cell]*tally{}
	for _, b := range ds.Bookings {
		k := cell{hotel: b.Hotel, month: b.ArrivalDate.Format("2006-01")}
		t := cells[k]
		if t == nil {
			t = &tally{}
			cells[k] = t
		}
		t.add(b)
	}
	keys := make([]cell, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].hotel != keys[j].hotel {
			return keys[i].hotel < keys[j].hotel
		}
		return keys[i].month < keys[j].month
	})
	out := make([]domain.MonthlyADR, 0, len(keys))
	for _, k := range keys {
		t := cells[k]
		out = append(out, domain.MonthlyADR{
			Hotel:    k.hotel,
			Month:    k.month,
			MeanADR:  stat.Mean(t.adr, nil),
			Bookings: t.n,
		})
	}
	return out, nil
}

// DefaultLeadTimeBin is the lead time histogram bucket width in days.
const DefaultLeadTimeBin = 10

// MonthlyBookings counts bookings per arrival month, split by cancellation.
func (s *QueryService) MonthlyBookings(ctx context.Context) ([]domain.MonthlyBookings, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	type cell struct {
		month    string
		canceled int
	}
	counts := map[cell]int{}
	for _, b := range ds.Bookings {
		counts[cell{month: b.ArrivalDate.Format("2006-01"), canceled: b.IsCanceled}]++
	}
	out := make([]domain.MonthlyBookings, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.MonthlyBookings{Month: k.month, IsCanceled: k.canceled, Bookings: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].IsCanceled < out[j].IsCanceled
	})
	return out, nil
}

// LeadTimes is the lead time histogram per hotel and cancellation flag with
// buckets of width days. Empty buckets are left out.
func (s *QueryService) LeadTimes(ctx context.Context, width int) ([]domain.LeadTimeBin, error) {
	if width <= 0 {
		return nil, &domain.ValueError{Row: -1, Column: "bin", Value: fmt.Sprint(width), Reason: "bucket width must be positive"}
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	type cell struct {
		hotel    string
		canceled int
		from     int
	}
	counts := map[cell]int{}
	for _, b := range ds.Bookings {
		counts[cell{hotel: b.Hotel, canceled: b.IsCanceled, from: b.LeadTime / width * width}]++
	}
	out := make([]domain.LeadTimeBin, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.LeadTimeBin{Hotel: k.hotel, IsCanceled: k.canceled, From: k.from, Bookings: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Hotel != b.Hotel {
			return a.Hotel < b.Hotel
		}
		if a.IsCanceled != b.IsCanceled {
			return a.IsCanceled < b.IsCanceled
		}
		return a.From < b.From
	})
	return out, nil
}

// Countries reports bookings per raw country code, most booked first.
func (s *QueryService) Countries(ctx context.Context) ([]domain.CountryStat, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	by := map[string]*tally{}
	for _, b := range ds.Bookings {
		t := by[b.Country]
		if t == nil {
			t = &tally{}
			by[b.Country] = t
		}
		t.add(b)
	}
	out := make([]domain.CountryStat, 0, len(by))
	for c, t := range by {
		out = append(out, domain.CountryStat{Country: c, Bookings: t.n, CancellationRate: t.rate()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bookings != out[j].Bookings {
			return out[i].Bookings > out[j].Bookings
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

// CountriesGeoJSON joins the country statistics onto the geographic
// reference and returns the encoded FeatureCollection.
func (s *QueryService) CountriesGeoJSON(ctx context.Context) ([]byte, error) {
	stats, err := s.Countries(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.GeoReference(ctx)
	if err != nil {
		return nil, err
	}
	fc, err := geo.Join(doc, stats)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("countries", len(stats)).Int("features", len(fc.Features)).Msg("geo join")
	return fc.MarshalJSON()
}

func bandOf(v float64, edges []float64) int {
	for i, e := range edges {
		if v <= e {
			return i
		}
	}
	return len(edges)
}

func bandLabels(lo, hi float64, edges []float64) []string {
	bounds := append(append([]float64{lo}, edges...), hi)
	out := make([]string, len(bounds)-1)
	for i := range out {
		open := "("
		if i == 0 {
			open = "["
		}
		out[i] = fmt.Sprintf("%s%.2f, %.2f]", open, bounds[i], bounds[i+1])
	}
	return out
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	if len(s)%2 == 1 {
		return s[len(s)/2]
	}
	return stat.Mean(s[len(s)/2-1:len(s)/2+1], nil)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
