package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/pipeline"
)

// TableSource yields the raw booking table.
type TableSource interface {
	Load(ctx context.Context) (dataframe.DataFrame, error)
}

var ErrGeoUnavailable = errors.New("geographic reference data not configured")

const (
	memoDataset = "dataset"
	memoBundle  = "bundle"
	memoGeo     = "geo"
)

// QueryService serves the read side: the cleaned dataset, the persisted
// bundle and the geographic reference. Each is loaded once per process.
type QueryService struct {
	src       TableSource
	artifacts domain.ArtifactStore
	geo       domain.GeoSource
	memo      domain.Memo
}

func NewQueryService(src TableSource, artifacts domain.ArtifactStore, geo domain.GeoSource, memo domain.Memo) *QueryService {
	return &QueryService{src: src, artifacts: artifacts, geo: geo, memo: memo}
}

// LoadDataset reads, cleans and types the source table.
func LoadDataset(ctx context.Context, src TableSource) (domain.Dataset, error) {
	raw, err := src.Load(ctx)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load table: %w", err)
	}
	clean, err := pipeline.Clean(raw)
	if err != nil {
		return domain.Dataset{}, err
	}
	return pipeline.Records(clean)
}

func (s *QueryService) Dataset(ctx context.Context) (domain.Dataset, error) {
	v, err := s.memo.Load(memoDataset, func() (any, error) {
		return LoadDataset(ctx, s.src)
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	return v.(domain.Dataset), nil
}

func (s *QueryService) Bundle(ctx context.Context) (domain.ModelBundle, error) {
	v, err := s.memo.Load(memoBundle, func() (any, error) {
		return s.artifacts.Load(ctx)
	})
	if err != nil {
		return domain.ModelBundle{}, err
	}
	return v.(domain.ModelBundle), nil
}

// GeoReference returns the raw GeoJSON document.
func (s *QueryService) GeoReference(ctx context.Context) ([]byte, error) {
	if s.geo == nil {
		return nil, ErrGeoUnavailable
	}
	v, err := s.memo.Load(memoGeo, func() (any, error) {
		return s.geo.Fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *QueryService) ModelMetrics(ctx context.Context) (domain.Metrics, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return domain.Metrics{}, err
	}
	return b.Metrics, nil
}

// FormOptions are the choices and ranges the prediction form offers.
type FormOptions struct {
	Categories map[string][]string `json:"categories"`
	Bounds     map[string]Bound    `json:"bounds"`
	Columns    []string            `json:"columns"`
}

func (s *QueryService) ModelOptions(ctx context.Context) (FormOptions, error) {
	b, err := s.Bundle(ctx)
	if err != nil {
		return FormOptions{}, err
	}
	return FormOptions{
		Categories: b.Encoders.Options(),
		Bounds:     FormBounds(),
		Columns:    append([]string(nil), FormColumns...),
	}, nil
}
