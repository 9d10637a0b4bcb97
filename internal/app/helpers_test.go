package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gota/gota/dataframe"

	"hotel_bookings/internal/adapters/csvsource"
	"hotel_bookings/internal/domain"
)

// ---- fakes ----

var header = []string{
	"hotel", "is_canceled", "lead_time", "arrival_date_year", "arrival_date_month",
	"arrival_date_week_number", "arrival_date_day_of_month", "stays_in_weekend_nights",
	"stays_in_week_nights", "adults", "children", "babies", "meal", "country",
	"market_segment", "distribution_channel", "is_repeated_guest", "previous_cancellations",
	"previous_bookings_not_canceled", "reserved_room_type", "assigned_room_type",
	"booking_changes", "deposit_type", "agent", "company", "days_in_waiting_list",
	"customer_type", "adr", "required_car_parking_spaces", "total_of_special_requests",
	"reservation_status", "reservation_status_date",
}

var defaults = map[string]string{
	"hotel": "City Hotel", "is_canceled": "0", "lead_time": "10", "arrival_date_year": "2016",
	"arrival_date_month": "May", "arrival_date_week_number": "20", "arrival_date_day_of_month": "12",
	"stays_in_weekend_nights": "1", "stays_in_week_nights": "2", "adults": "2", "children": "0",
	"babies": "0", "meal": "BB", "country": "PRT", "market_segment": "Online TA",
	"distribution_channel": "TA/TO", "is_repeated_guest": "0", "previous_cancellations": "0",
	"previous_bookings_not_canceled": "0", "reserved_room_type": "A", "assigned_room_type": "A",
	"booking_changes": "0", "deposit_type": "No Deposit", "agent": "9", "company": "NULL",
	"days_in_waiting_list": "0", "customer_type": "Transient", "adr": "100",
	"required_car_parking_spaces": "0", "total_of_special_requests": "1",
	"reservation_status": "Check-Out", "reservation_status_date": "2016-05-15",
}

// tableSource serves a CSV built from row overrides and counts loads.
type tableSource struct {
	mu    sync.Mutex
	csv   string
	calls int
}

func newTableSource(rows ...map[string]string) *tableSource {
	lines := []string{strings.Join(header, ",")}
	for _, over := range rows {
		cells := make([]string, len(header))
		for i, h := range header {
			v, ok := over[h]
			if !ok {
				v = defaults[h]
			}
			cells[i] = v
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return &tableSource{csv: strings.Join(lines, "\n") + "\n"}
}

func (s *tableSource) Load(ctx context.Context) (dataframe.DataFrame, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return csvsource.Read(strings.NewReader(s.csv), ',')
}

// trainingRows is a separable table: canceled bookings are long-lead,
// non-refundable ones. GBR and PRT pass a threshold of 10, ESP does not.
func trainingRows() []map[string]string {
	var rows []map[string]string
	for i := 0; i < 60; i++ {
		country := "PRT"
		switch {
		case i%5 == 0:
			country = "GBR"
		case i == 7 || i == 13 || i == 21:
			country = "ESP"
		}
		r := map[string]string{
			"country": country,
			"adr":     fmt.Sprintf("%d", 60+i),
		}
		if i%2 == 1 {
			r["is_canceled"] = "1"
			r["lead_time"] = fmt.Sprintf("%d", 250+i)
			r["deposit_type"] = "Non Refund"
		}
		if i%3 == 0 {
			r["hotel"] = "Resort Hotel"
			r["arrival_date_month"] = "June"
		}
		rows = append(rows, r)
	}
	return rows
}

// memStore keeps one bundle and refuses to overwrite it.
type memStore struct {
	mu     sync.Mutex
	bundle *domain.ModelBundle
	saves  int
}

func (s *memStore) Save(ctx context.Context, b domain.ModelBundle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.bundle != nil {
		return false, nil
	}
	s.bundle = &b
	return true, nil
}

func (s *memStore) Load(ctx context.Context) (domain.ModelBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return domain.ModelBundle{}, fmt.Errorf("%w: memory", domain.ErrArtifactNotFound)
	}
	return *s.bundle, nil
}

type staticBundle struct{ b domain.ModelBundle }

func (s staticBundle) Bundle(ctx context.Context) (domain.ModelBundle, error) { return s.b, nil }

// jsonCache round-trips values through JSON like the redis adapter does.
type jsonCache struct {
	store map[string][]byte
	sets  int
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type fakeRepo struct {
	inserted []domain.Prediction
	err      error
}

func (r *fakeRepo) InsertPrediction(ctx context.Context, p domain.Prediction) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, p)
	return nil
}

func (r *fakeRepo) ListPredictions(ctx context.Context, limit int) (domain.PredictionsPage, error) {
	out := domain.PredictionsPage{Items: []domain.Prediction{}}
	for i := len(r.inserted) - 1; i >= 0 && len(out.Items) < limit; i-- {
		out.Items = append(out.Items, r.inserted[i])
	}
	return out, nil
}

type fakeGeo struct {
	doc   []byte
	calls int
}

func (g *fakeGeo) Fetch(ctx context.Context) ([]byte, error) {
	g.calls++
	return g.doc, nil
}

// form is a valid prediction form record as a JSON body would decode it.
func form() map[string]any {
	return map[string]any{
		"hotel": "City Hotel", "lead_time": 300.0, "arrival_date_week_number": 20.0,
		"stays_in_weekend_nights": 1.0, "stays_in_week_nights": 2.0, "adults": 2.0,
		"children": 0.0, "babies": 0.0, "meal": "BB", "country": "PRT",
		"market_segment": "Online TA", "distribution_channel": "TA/TO", "is_repeated_guest": 0.0,
		"previous_cancellations": 0.0, "previous_bookings_not_canceled": 0.0,
		"reserved_room_type": "A", "assigned_room_type": "A", "booking_changes": 0.0,
		"deposit_type": "Non Refund", "days_in_waiting_list": 0.0, "customer_type": "Transient",
		"adr": 95.0, "required_car_parking_spaces": 0.0, "total_of_special_requests": 1.0,
	}
}

// brokenCache reports a hit whose entry cannot be decoded.
type brokenCache struct{ jsonCache }

func (c *brokenCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return true, errors.New("decode: corrupt entry")
}
