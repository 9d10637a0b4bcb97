package domain

// Summary is the headline view of the cleaned dataset.
type Summary struct {
	Rows             int            `json:"rows"`
	Columns          int            `json:"columns"`
	CancellationRate float64        `json:"cancellation_rate"`
	Hotels           []HotelSummary `json:"hotels"`
}

type HotelSummary struct {
	Hotel            string  `json:"hotel"`
	Bookings         int     `json:"bookings"`
	CancellationRate float64 `json:"cancellation_rate"`
	MedianADR        float64 `json:"median_adr"`
}

// PriceBand is one (rate quintile, hotel) cell.
type PriceBand struct {
	Band             string  `json:"band"`
	Hotel            string  `json:"hotel"`
	Bookings         int     `json:"bookings"`
	CancellationRate float64 `json:"cancellation_rate"`
}

type PriceBands struct {
	// Edges are the adr cut points between consecutive bands.
	Edges []float64   `json:"edges"`
	Bands []PriceBand `json:"bands"`
}

type MonthlyADR struct {
	Hotel    string  `json:"hotel"`
	Month    string  `json:"month"` // YYYY-MM
	MeanADR  float64 `json:"mean_adr"`
	Bookings int     `json:"bookings"`
}

type CountryStat struct {
	Country          string  `json:"country"`
	Bookings         int     `json:"bookings"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// MonthlyBookings counts bookings per arrival month and cancellation flag.
type MonthlyBookings struct {
	Month      string `json:"month"` // YYYY-MM
	IsCanceled int    `json:"is_canceled"`
	Bookings   int    `json:"bookings"`
}

// LeadTimeBin counts the bookings of one hotel and cancellation flag whose
// lead time falls in [From, From+width).
type LeadTimeBin struct {
	Hotel      string `json:"hotel"`
	IsCanceled int    `json:"is_canceled"`
	From       int    `json:"from"`
	Bookings   int    `json:"bookings"`
}
