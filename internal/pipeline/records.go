package pipeline

import (
	"errors"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"hotel_bookings/internal/domain"
)

// BookingColumns are the columns a cleaned table must carry to be turned into
// bookings.
var BookingColumns = []string{
	domain.ColHotel, domain.ColIsCanceled, domain.ColLeadTime,
	domain.ColArrivalYear, domain.ColArrivalMonth, domain.ColArrivalWeekNumber, domain.ColArrivalDayOfMonth,
	domain.ColWeekendNights, domain.ColWeekNights,
	domain.ColAdults, domain.ColChildren, domain.ColBabies,
	domain.ColMeal, domain.ColCountry, domain.ColMarketSegment, domain.ColDistributionChannel,
	domain.ColIsRepeatedGuest, domain.ColPreviousCancellations, domain.ColPreviousBookingsNotCanceled,
	domain.ColReservedRoomType, domain.ColAssignedRoomType, domain.ColBookingChanges,
	domain.ColDepositType, domain.ColDaysInWaitingList, domain.ColCustomerType, domain.ColADR,
	domain.ColParkingSpaces, domain.ColSpecialRequests,
	domain.ColReservationStatus, domain.ColReservationStatusDate,
}

// Records converts a cleaned table into typed bookings and composes each
// arrival date.
func Records(df dataframe.DataFrame) (domain.Dataset, error) {
	if err := requireColumns(df.Names(), BookingColumns); err != nil {
		return domain.Dataset{}, err
	}
	cols := make(map[string]series.Series, len(BookingColumns))
	for _, name := range BookingColumns {
		cols[name] = df.Col(name)
	}

	n := df.Nrow()
	out := make([]domain.Booking, n)
	for i := 0; i < n; i++ {
		r := rowReader{cols: cols, row: i}
		b := domain.Booking{
			Hotel:                       r.str(domain.ColHotel),
			IsCanceled:                  r.integer(domain.ColIsCanceled),
			LeadTime:                    r.integer(domain.ColLeadTime),
			ArrivalYear:                 r.integer(domain.ColArrivalYear),
			ArrivalMonth:                r.str(domain.ColArrivalMonth),
			ArrivalWeekNumber:           r.integer(domain.ColArrivalWeekNumber),
			ArrivalDayOfMonth:           r.integer(domain.ColArrivalDayOfMonth),
			WeekendNights:               r.integer(domain.ColWeekendNights),
			WeekNights:                  r.integer(domain.ColWeekNights),
			Adults:                      r.integer(domain.ColAdults),
			Children:                    r.integer(domain.ColChildren),
			Babies:                      r.integer(domain.ColBabies),
			Meal:                        r.str(domain.ColMeal),
			Country:                     r.str(domain.ColCountry),
			MarketSegment:               r.str(domain.ColMarketSegment),
			DistributionChannel:         r.str(domain.ColDistributionChannel),
			IsRepeatedGuest:             r.integer(domain.ColIsRepeatedGuest),
			PreviousCancellations:       r.integer(domain.ColPreviousCancellations),
			PreviousBookingsNotCanceled: r.integer(domain.ColPreviousBookingsNotCanceled),
			ReservedRoomType:            r.str(domain.ColReservedRoomType),
			AssignedRoomType:            r.str(domain.ColAssignedRoomType),
			BookingChanges:              r.integer(domain.ColBookingChanges),
			DepositType:                 r.str(domain.ColDepositType),
			DaysInWaitingList:           r.integer(domain.ColDaysInWaitingList),
			CustomerType:                r.str(domain.ColCustomerType),
			ADR:                         r.number(domain.ColADR),
			ParkingSpaces:               r.integer(domain.ColParkingSpaces),
			SpecialRequests:             r.integer(domain.ColSpecialRequests),
			ReservationStatus:           r.str(domain.ColReservationStatus),
			ReservationStatusDate:       r.str(domain.ColReservationStatusDate),
		}
		if r.err != nil {
			return domain.Dataset{}, r.err
		}
		d, err := ArrivalDate(b.ArrivalYear, b.ArrivalMonth, b.ArrivalDayOfMonth)
		if err != nil {
			return domain.Dataset{}, atRow(err, i)
		}
		b.ArrivalDate = d
		out[i] = b
	}
	return domain.Dataset{Columns: df.Names(), Bookings: out}, nil
}

// rowReader reads typed cells of one row and keeps the first failure.
type rowReader struct {
	cols map[string]series.Series
	row  int
	err  error
}

func (r *rowReader) str(col string) string {
	e := r.cols[col].Elem(r.row)
	if e.IsNA() {
		r.fail(col, "NaN", "null cell")
		return ""
	}
	return e.String()
}

func (r *rowReader) number(col string) float64 {
	e := r.cols[col].Elem(r.row)
	v := e.Float()
	if e.IsNA() || math.IsNaN(v) {
		r.fail(col, e.String(), "null cell")
		return 0
	}
	return v
}

func (r *rowReader) integer(col string) int {
	v := r.number(col)
	if v != math.Trunc(v) {
		r.fail(col, strconv.FormatFloat(v, 'f', -1, 64), "not an integer")
		return 0
	}
	return int(v)
}

func (r *rowReader) fail(col, value, reason string) {
	if r.err == nil {
		r.err = &domain.ValueError{Row: r.row, Column: col, Value: value, Reason: reason}
	}
}

func atRow(err error, row int) error {
	var ve *domain.ValueError
	if errors.As(err, &ve) {
		cp := *ve
		cp.Row = row
		return &cp
	}
	return err
}
