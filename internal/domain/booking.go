package domain

import "time"

// Column names of the source table.
const (
	ColHotel                       = "hotel"
	ColIsCanceled                  = "is_canceled"
	ColLeadTime                    = "lead_time"
	ColArrivalYear                 = "arrival_date_year"
	ColArrivalMonth                = "arrival_date_month"
	ColArrivalWeekNumber           = "arrival_date_week_number"
	ColArrivalDayOfMonth           = "arrival_date_day_of_month"
	ColWeekendNights               = "stays_in_weekend_nights"
	ColWeekNights                  = "stays_in_week_nights"
	ColAdults                      = "adults"
	ColChildren                    = "children"
	ColBabies                      = "babies"
	ColMeal                        = "meal"
	ColCountry                     = "country"
	ColMarketSegment               = "market_segment"
	ColDistributionChannel         = "distribution_channel"
	ColIsRepeatedGuest             = "is_repeated_guest"
	ColPreviousCancellations       = "previous_cancellations"
	ColPreviousBookingsNotCanceled = "previous_bookings_not_canceled"
	ColReservedRoomType            = "reserved_room_type"
	ColAssignedRoomType            = "assigned_room_type"
	ColBookingChanges              = "booking_changes"
	ColDepositType                 = "deposit_type"
	ColAgent                       = "agent"
	ColCompany                     = "company"
	ColDaysInWaitingList           = "days_in_waiting_list"
	ColCustomerType                = "customer_type"
	ColADR                         = "adr"
	ColParkingSpaces               = "required_car_parking_spaces"
	ColSpecialRequests             = "total_of_special_requests"
	ColReservationStatus           = "reservation_status"
	ColReservationStatusDate       = "reservation_status_date"

	// derived
	ColArrivalDate  = "arrival_date"
	ColSameRoomType = "same_room_type"
)

// Literal category values the pipeline depends on.
const (
	SegmentComplementary = "Complementary"
	MealSelfCatering     = "SC"
	CountryOther         = "Other"
)

// Booking is one cleaned hotel reservation.
type Booking struct {
	Hotel                       string
	IsCanceled                  int
	LeadTime                    int
	ArrivalYear                 int
	ArrivalMonth                string
	ArrivalWeekNumber           int
	ArrivalDayOfMonth           int
	WeekendNights               int
	WeekNights                  int
	Adults                      int
	Children                    int
	Babies                      int
	Meal                        string
	Country                     string
	MarketSegment               string
	DistributionChannel         string
	IsRepeatedGuest             int
	PreviousCancellations       int
	PreviousBookingsNotCanceled int
	ReservedRoomType            string
	AssignedRoomType            string
	BookingChanges              int
	DepositType                 string
	DaysInWaitingList           int
	CustomerType                string
	ADR                         float64
	ParkingSpaces               int
	SpecialRequests             int
	ReservationStatus           string
	ReservationStatusDate       string

	ArrivalDate time.Time // composed from year, month and day
}

// Dataset is the cleaned source table in typed form. Columns keeps the
// cleaned table's header (after the identifier columns were dropped).
type Dataset struct {
	Columns  []string
	Bookings []Booking
}
