package app

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/shared"
)

// BookingInput is one booking as submitted through the prediction form. The
// validate bounds are the ranges the form offers.
type BookingInput struct {
	Hotel                       string  `json:"hotel" validate:"required"`
	LeadTime                    int     `json:"lead_time" validate:"min=0,max=737"`
	ArrivalWeekNumber           int     `json:"arrival_date_week_number" validate:"min=1,max=53"`
	WeekendNights               int     `json:"stays_in_weekend_nights" validate:"min=0,max=19"`
	WeekNights                  int     `json:"stays_in_week_nights" validate:"min=0,max=50"`
	Adults                      int     `json:"adults" validate:"min=0,max=55"`
	Children                    int     `json:"children" validate:"min=0,max=10"`
	Babies                      int     `json:"babies" validate:"min=0,max=10"`
	Meal                        string  `json:"meal" validate:"required"`
	Country                     string  `json:"country" validate:"required"`
	MarketSegment               string  `json:"market_segment" validate:"required"`
	DistributionChannel         string  `json:"distribution_channel" validate:"required"`
	IsRepeatedGuest             int     `json:"is_repeated_guest" validate:"min=0,max=1"`
	PreviousCancellations       int     `json:"previous_cancellations" validate:"min=0,max=50"`
	PreviousBookingsNotCanceled int     `json:"previous_bookings_not_canceled" validate:"min=0,max=50"`
	ReservedRoomType            string  `json:"reserved_room_type" validate:"required"`
	AssignedRoomType            string  `json:"assigned_room_type" validate:"required"`
	BookingChanges              int     `json:"booking_changes" validate:"min=0,max=21"`
	DepositType                 string  `json:"deposit_type" validate:"required"`
	DaysInWaitingList           int     `json:"days_in_waiting_list" validate:"min=0,max=391"`
	CustomerType                string  `json:"customer_type" validate:"required"`
	ADR                         float64 `json:"adr" validate:"min=0,max=5400"`
	ParkingSpaces               int     `json:"required_car_parking_spaces" validate:"min=0,max=8"`
	SpecialRequests             int     `json:"total_of_special_requests" validate:"min=0,max=5"`
}

// FormColumns lists every key a form record must carry, in field order.
var FormColumns = func() []string {
	t := reflect.TypeOf(BookingInput{})
	out := make([]string, t.NumField())
	for i := range out {
		out[i] = jsonName(t.Field(i))
	}
	return out
}()

// Bound is the accepted range of a numeric form field.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FormBounds reads the numeric ranges off the BookingInput validate tags.
func FormBounds() map[string]Bound {
	t := reflect.TypeOf(BookingInput{})
	out := make(map[string]Bound)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		var b Bound
		var hasMin, hasMax bool
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			k, v, ok := strings.Cut(rule, "=")
			if !ok {
				continue
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			switch k {
			case "min":
				b.Min, hasMin = n, true
			case "max":
				b.Max, hasMax = n, true
			}
		}
		if hasMin && hasMax {
			out[jsonName(f)] = b
		}
	}
	return out
}

// MapBookingForm converts a raw form record into a validated input. Missing
// keys fail with a SchemaError listing all of them; unparsable or out of
// range values fail with ValueErrors.
func MapBookingForm(form map[string]any) (BookingInput, error) {
	var missing []string
	for _, c := range FormColumns {
		if _, ok := form[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return BookingInput{}, &domain.SchemaError{Missing: missing}
	}

	p := formParser{form: form}
	in := BookingInput{
		Hotel:                       p.str(domain.ColHotel),
		LeadTime:                    p.integer(domain.ColLeadTime),
		ArrivalWeekNumber:           p.integer(domain.ColArrivalWeekNumber),
		WeekendNights:               p.integer(domain.ColWeekendNights),
		WeekNights:                  p.integer(domain.ColWeekNights),
		Adults:                      p.integer(domain.ColAdults),
		Children:                    p.integer(domain.ColChildren),
		Babies:                      p.integer(domain.ColBabies),
		Meal:                        p.str(domain.ColMeal),
		Country:                     p.str(domain.ColCountry),
		MarketSegment:               p.str(domain.ColMarketSegment),
		DistributionChannel:         p.str(domain.ColDistributionChannel),
		IsRepeatedGuest:             p.integer(domain.ColIsRepeatedGuest),
		PreviousCancellations:       p.integer(domain.ColPreviousCancellations),
		PreviousBookingsNotCanceled: p.integer(domain.ColPreviousBookingsNotCanceled),
		ReservedRoomType:            p.str(domain.ColReservedRoomType),
		AssignedRoomType:            p.str(domain.ColAssignedRoomType),
		BookingChanges:              p.integer(domain.ColBookingChanges),
		DepositType:                 p.str(domain.ColDepositType),
		DaysInWaitingList:           p.integer(domain.ColDaysInWaitingList),
		CustomerType:                p.str(domain.ColCustomerType),
		ADR:                         p.number(domain.ColADR),
		ParkingSpaces:               p.integer(domain.ColParkingSpaces),
		SpecialRequests:             p.integer(domain.ColSpecialRequests),
	}
	if p.err != nil {
		return BookingInput{}, p.err
	}
	if err := validateInput(in); err != nil {
		return BookingInput{}, err
	}
	return in, nil
}

// Booking converts the input into the record shape the feature builder
// reads. Fields the form does not carry stay zero.
func (in BookingInput) Booking() domain.Booking {
	return domain.Booking{
		Hotel:                       in.Hotel,
		LeadTime:                    in.LeadTime,
		ArrivalWeekNumber:           in.ArrivalWeekNumber,
		WeekendNights:               in.WeekendNights,
		WeekNights:                  in.WeekNights,
		Adults:                      in.Adults,
		Children:                    in.Children,
		Babies:                      in.Babies,
		Meal:                        in.Meal,
		Country:                     in.Country,
		MarketSegment:               in.MarketSegment,
		DistributionChannel:         in.DistributionChannel,
		IsRepeatedGuest:             in.IsRepeatedGuest,
		PreviousCancellations:       in.PreviousCancellations,
		PreviousBookingsNotCanceled: in.PreviousBookingsNotCanceled,
		ReservedRoomType:            in.ReservedRoomType,
		AssignedRoomType:            in.AssignedRoomType,
		BookingChanges:              in.BookingChanges,
		DepositType:                 in.DepositType,
		DaysInWaitingList:           in.DaysInWaitingList,
		CustomerType:                in.CustomerType,
		ADR:                         in.ADR,
		ParkingSpaces:               in.ParkingSpaces,
		SpecialRequests:             in.SpecialRequests,
	}
}

// Canonical is the stable JSON form of the input and its sha1 digest.
func (in BookingInput) Canonical() ([]byte, string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, "", err
	}
	sum := sha1.Sum(b)
	return b, hex.EncodeToString(sum[:]), nil
}

func validateInput(in BookingInput) error {
	err := shared.Validator().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		reason := "required"
		if fe.Tag() != "required" {
			reason = fmt.Sprintf("out of range (%s %s)", fe.Tag(), fe.Param())
		}
		errs = append(errs, &domain.ValueError{Row: -1, Column: fe.Field(), Value: fmt.Sprint(fe.Value()), Reason: reason})
	}
	return errors.Join(errs...)
}

// formParser reads typed form values and keeps the first failure.
type formParser struct {
	form map[string]any
	err  error
}

func (p *formParser) fail(col string, v any, reason string) {
	if p.err == nil {
		p.err = &domain.ValueError{Row: -1, Column: col, Value: fmt.Sprint(v), Reason: reason}
	}
}

func (p *formParser) str(col string) string {
	switch v := p.form[col].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		if len(v) == 1 {
			return strings.TrimSpace(v[0])
		}
	}
	p.fail(col, p.form[col], "not a string")
	return ""
}

// number accepts float64/int/json.Number or strings such as "8,5".
func (p *formParser) number(col string) float64 {
	raw := p.form[col]
	if vs, ok := raw.([]string); ok && len(vs) == 1 {
		raw = vs[0]
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	p.fail(col, raw, "not a number")
	return 0
}

func (p *formParser) integer(col string) int {
	f := p.number(col)
	if f != math.Trunc(f) {
		p.fail(col, f, "not an integer")
		return 0
	}
	return int(f)
}

func jsonName(f reflect.StructField) string {
	return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
}
