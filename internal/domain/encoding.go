package domain

import (
	"sort"
	"strconv"
)

// Encoder maps the categories of one column to stable integer codes. Classes
// is kept sorted; a category's code is its index.
type Encoder struct {
	Column  string   `json:"column"`
	Classes []string `json:"classes"`
}

func (e *Encoder) Encode(value string) (int, error) {
	i := sort.SearchStrings(e.Classes, value)
	if i < len(e.Classes) && e.Classes[i] == value {
		return i, nil
	}
	return 0, &CategoryError{Column: e.Column, Value: value}
}

func (e *Encoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", &ValueError{Row: -1, Column: e.Column, Value: strconv.Itoa(code), Reason: "code out of range"}
	}
	return e.Classes[code], nil
}

// CountryRule is the frozen rare-country collapse learned at training time.
// Labels maps every country observed during fitting to itself or to
// CountryOther.
type CountryRule struct {
	Threshold int               `json:"threshold"`
	Labels    map[string]string `json:"labels"`
}

// Label maps a raw country code through the frozen rule. The synthetic
// CountryOther label maps to itself.
func (r CountryRule) Label(country string) (string, error) {
	if country == CountryOther {
		return CountryOther, nil
	}
	if l, ok := r.Labels[country]; ok {
		return l, nil
	}
	return "", &CategoryError{Column: ColCountry, Value: country}
}

// EncoderSet holds one fitted encoder per categorical column plus the
// country rule. It is created once by training and only read afterwards.
type EncoderSet struct {
	Encoders map[string]*Encoder `json:"encoders"`
	Country  CountryRule         `json:"country"`
}

func (s *EncoderSet) Encoder(column string) (*Encoder, bool) {
	e, ok := s.Encoders[column]
	return e, ok
}

// Options returns the sorted classes per column, the values the prediction
// form offers.
func (s *EncoderSet) Options() map[string][]string {
	out := make(map[string][]string, len(s.Encoders))
	for col, e := range s.Encoders {
		out[col] = append([]string(nil), e.Classes...)
	}
	return out
}
