package geo

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"hotel_bookings/internal/domain"
)

// CountryKey is the feature property holding the three-letter country code.
const CountryKey = "ADM0_A3_US"

// Join keeps the features whose CountryKey matches a stat and copies the
// stat onto their properties. Features without a match are dropped.
func Join(doc []byte, stats []domain.CountryStat) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(doc)
	if err != nil {
		return nil, fmt.Errorf("decode geo reference: %w", err)
	}
	byCode := make(map[string]domain.CountryStat, len(stats))
	for _, s := range stats {
		byCode[s.Country] = s
	}

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		code := f.Properties.MustString(CountryKey, "")
		s, ok := byCode[code]
		if !ok {
			continue
		}
		f.Properties["country"] = s.Country
		f.Properties["count"] = s.Bookings
		f.Properties["cancellation_rate"] = s.CancellationRate
		out.Append(f)
	}
	return out, nil
}
