package pipeline

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/domain"
)

// DefaultCountryThreshold is the minimum number of bookings a country needs
// to keep its own label.
const DefaultCountryThreshold = 500

// Mode selects whether a build fits new encoders or reuses persisted ones.
type Mode int

const (
	ModeFit Mode = iota
	ModeReuse
)

// CategoricalColumns are the text columns the model sees as integer codes.
var CategoricalColumns = []string{
	domain.ColHotel, domain.ColMeal, domain.ColCountry, domain.ColMarketSegment,
	domain.ColDistributionChannel, domain.ColReservedRoomType, domain.ColAssignedRoomType,
	domain.ColDepositType, domain.ColCustomerType,
}

// FeatureNames is the column order of every feature vector.
var FeatureNames = []string{
	domain.ColHotel,
	domain.ColLeadTime,
	domain.ColArrivalWeekNumber,
	domain.ColWeekendNights,
	domain.ColWeekNights,
	domain.ColAdults,
	domain.ColChildren,
	domain.ColBabies,
	domain.ColMeal,
	domain.ColCountry,
	domain.ColMarketSegment,
	domain.ColDistributionChannel,
	domain.ColIsRepeatedGuest,
	domain.ColPreviousCancellations,
	domain.ColPreviousBookingsNotCanceled,
	domain.ColReservedRoomType,
	domain.ColAssignedRoomType,
	domain.ColBookingChanges,
	domain.ColDepositType,
	domain.ColDaysInWaitingList,
	domain.ColCustomerType,
	domain.ColADR,
	domain.ColParkingSpaces,
	domain.ColSpecialRequests,
	domain.ColSameRoomType,
}

// FeatureTable is the numeric model input. Rows are ordered like Names.
type FeatureTable struct {
	Names  []string
	Rows   [][]float64
	Target []int
}

type FeatureBuilder struct {
	threshold int
}

func NewFeatureBuilder(countryThreshold int) *FeatureBuilder {
	if countryThreshold <= 0 {
		countryThreshold = DefaultCountryThreshold
	}
	return &FeatureBuilder{threshold: countryThreshold}
}

// Fit learns the country rule and one encoder per categorical column from
// bookings, then encodes them.
func (b *FeatureBuilder) Fit(bookings []domain.Booking) (FeatureTable, *domain.EncoderSet, error) {
	return b.build(bookings, nil, ModeFit)
}

// Transform encodes bookings with previously fitted encoders.
func (b *FeatureBuilder) Transform(bookings []domain.Booking, enc *domain.EncoderSet) (FeatureTable, error) {
	t, _, err := b.build(bookings, enc, ModeReuse)
	return t, err
}

func (b *FeatureBuilder) build(bookings []domain.Booking, enc *domain.EncoderSet, mode Mode) (FeatureTable, *domain.EncoderSet, error) {
	switch mode {
	case ModeFit:
		enc = FitEncoderSet(bookings, b.threshold)
	case ModeReuse:
		if enc == nil {
			return FeatureTable{}, nil, fmt.Errorf("transform: no fitted encoders")
		}
	default:
		return FeatureTable{}, nil, fmt.Errorf("unknown build mode %d", mode)
	}

	t := FeatureTable{
		Names:  append([]string(nil), FeatureNames...),
		Rows:   make([][]float64, len(bookings)),
		Target: make([]int, len(bookings)),
	}
	for i, bk := range bookings {
		feats, err := Features(bk, enc)
		if err != nil {
			return FeatureTable{}, nil, fmt.Errorf("row %d: %w", i, err)
		}
		row, err := Vector(feats, t.Names)
		if err != nil {
			return FeatureTable{}, nil, fmt.Errorf("row %d: %w", i, err)
		}
		t.Rows[i] = row
		t.Target[i] = bk.IsCanceled
	}
	return t, enc, nil
}

// FitEncoderSet collapses rare countries and fits a sorted encoder for every
// categorical column.
func FitEncoderSet(bookings []domain.Booking, threshold int) *domain.EncoderSet {
	rule := FitCountryRule(bookings, threshold)
	values := make(map[string][]string, len(CategoricalColumns))
	for _, bk := range bookings {
		for _, col := range CategoricalColumns {
			v := categorical(bk, col)
			if col == domain.ColCountry {
				v = rule.Labels[v]
			}
			values[col] = append(values[col], v)
		}
	}
	set := &domain.EncoderSet{
		Encoders: make(map[string]*domain.Encoder, len(CategoricalColumns)),
		Country:  rule,
	}
	for _, col := range CategoricalColumns {
		set.Encoders[col] = FitEncoder(col, values[col])
	}
	log.Debug().
		Int("countries", len(rule.Labels)).
		Int("country_classes", len(set.Encoders[domain.ColCountry].Classes)).
		Msg("encoders fitted")
	return set
}

// FitCountryRule relabels every country seen fewer than threshold times as
// CountryOther.
func FitCountryRule(bookings []domain.Booking, threshold int) domain.CountryRule {
	counts := make(map[string]int)
	for _, bk := range bookings {
		counts[bk.Country]++
	}
	labels := make(map[string]string, len(counts))
	for c, n := range counts {
		if n < threshold {
			labels[c] = domain.CountryOther
		} else {
			labels[c] = c
		}
	}
	return domain.CountryRule{Threshold: threshold, Labels: labels}
}

// FitEncoder assigns codes in sorted order of the distinct values, so the
// same value set always yields the same codes.
func FitEncoder(column string, values []string) *domain.Encoder {
	seen := make(map[string]struct{}, 16)
	classes := make([]string, 0, 16)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return &domain.Encoder{Column: column, Classes: classes}
}

// Features derives the named model inputs of one booking using enc.
func Features(bk domain.Booking, enc *domain.EncoderSet) (map[string]float64, error) {
	f := map[string]float64{
		domain.ColLeadTime:                    float64(bk.LeadTime),
		domain.ColArrivalWeekNumber:           float64(bk.ArrivalWeekNumber),
		domain.ColWeekendNights:               float64(bk.WeekendNights),
		domain.ColWeekNights:                  float64(bk.WeekNights),
		domain.ColAdults:                      float64(bk.Adults),
		domain.ColChildren:                    float64(bk.Children),
		domain.ColBabies:                      float64(bk.Babies),
		domain.ColIsRepeatedGuest:             float64(bk.IsRepeatedGuest),
		domain.ColPreviousCancellations:       float64(bk.PreviousCancellations),
		domain.ColPreviousBookingsNotCanceled: float64(bk.PreviousBookingsNotCanceled),
		domain.ColBookingChanges:              float64(bk.BookingChanges),
		domain.ColDaysInWaitingList:           float64(bk.DaysInWaitingList),
		domain.ColADR:                         bk.ADR,
		domain.ColParkingSpaces:               float64(bk.ParkingSpaces),
		domain.ColSpecialRequests:             float64(bk.SpecialRequests),
		domain.ColSameRoomType:                float64(SameRoomType(bk.ReservedRoomType, bk.AssignedRoomType)),
	}
	for _, col := range CategoricalColumns {
		v := categorical(bk, col)
		if col == domain.ColCountry {
			l, err := enc.Country.Label(v)
			if err != nil {
				return nil, err
			}
			v = l
		}
		e, ok := enc.Encoder(col)
		if !ok {
			return nil, fmt.Errorf("no encoder for column %s", col)
		}
		code, err := e.Encode(v)
		if err != nil {
			return nil, err
		}
		f[col] = float64(code)
	}
	return f, nil
}

// Vector lays named features out in the given order.
func Vector(features map[string]float64, names []string) ([]float64, error) {
	out := make([]float64, len(names))
	var missing []string
	for i, n := range names {
		v, ok := features[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out[i] = v
	}
	if len(missing) > 0 {
		return nil, &domain.FeatureError{Missing: missing}
	}
	return out, nil
}

// SameRoomType is 1 when the guest got the room type they reserved.
func SameRoomType(reserved, assigned string) int {
	if reserved == assigned {
		return 1
	}
	return 0
}

func categorical(bk domain.Booking, col string) string {
	switch col {
	case domain.ColHotel:
		return bk.Hotel
	case domain.ColMeal:
		return bk.Meal
	case domain.ColCountry:
		return bk.Country
	case domain.ColMarketSegment:
		return bk.MarketSegment
	case domain.ColDistributionChannel:
		return bk.DistributionChannel
	case domain.ColReservedRoomType:
		return bk.ReservedRoomType
	case domain.ColAssignedRoomType:
		return bk.AssignedRoomType
	case domain.ColDepositType:
		return bk.DepositType
	case domain.ColCustomerType:
		return bk.CustomerType
	}
	return ""
}
