package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/adapters/observability"
	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/pipeline"
)

// BundleSource yields the persisted model bundle.
type BundleSource interface {
	Bundle(ctx context.Context) (domain.ModelBundle, error)
}

// PredictionService scores form records with the persisted bundle. The
// repository and cache are optional.
type PredictionService struct {
	bundles BundleSource
	repo    domain.PredictionRepository
	cache   domain.Cache
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
}

func NewPredictionService(b BundleSource, repo domain.PredictionRepository, cache domain.Cache, ttl time.Duration) *PredictionService {
	return &PredictionService{bundles: b, repo: repo, cache: cache, ttl: ttl, now: time.Now, newID: uuid.NewString}
}

// Infer encodes one booking with the bundle's frozen encoders and returns
// the predicted label and [P(not canceled), P(canceled)].
func Infer(b domain.ModelBundle, bk domain.Booking) (int, [2]float64, error) {
	if b.Classifier == nil || b.Encoders == nil {
		return 0, [2]float64{}, fmt.Errorf("infer: %w", domain.ErrArtifactNotFound)
	}
	feats, err := pipeline.Features(bk, b.Encoders)
	if err != nil {
		return 0, [2]float64{}, err
	}
	names := b.Metrics.FeatureNames
	if len(names) == 0 {
		names = pipeline.FeatureNames
	}
	vec, err := pipeline.Vector(feats, names)
	if err != nil {
		return 0, [2]float64{}, err
	}
	proba, err := b.Classifier.PredictProba([][]float64{vec})
	if err != nil {
		return 0, [2]float64{}, err
	}
	label := 0
	if proba[0][1] > proba[0][0] {
		label = 1
	}
	return label, proba[0], nil
}

func (s *PredictionService) Predict(ctx context.Context, form map[string]any) (domain.Prediction, error) {
	in, err := MapBookingForm(form)
	if err != nil {
		return domain.Prediction{}, err
	}
	bundle, err := s.bundles.Bundle(ctx)
	if err != nil {
		return domain.Prediction{}, err
	}
	canonical, digest, err := in.Canonical()
	if err != nil {
		return domain.Prediction{}, err
	}
	key := fmt.Sprintf("prediction:%d:%s", bundle.Metrics.TrainedAt.Unix(), digest)
	if s.cache != nil {
		var cached domain.Prediction
		ok, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			// an unreadable entry is a miss; it is overwritten below
			log.Warn().Err(err).Str("key", key).Msg("prediction cache read failed")
		case ok:
			return cached, nil
		}
	}

	label, proba, err := Infer(bundle, in.Booking())
	if err != nil {
		return domain.Prediction{}, err
	}
	p := domain.Prediction{
		ID:              s.newID(),
		Label:           label,
		ProbNotCanceled: proba[0],
		ProbCanceled:    proba[1],
		Input:           canonical,
		CreatedAt:       s.now().UTC(),
	}
	observability.ObservePrediction(label)

	if s.repo != nil {
		// the prediction stands even if the audit insert fails
		if err := s.repo.InsertPrediction(ctx, p); err != nil {
			log.Error().Err(err).Str("id", p.ID).Msg("record prediction")
		}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, int(s.ttl.Seconds()))
	}
	return p, nil
}

// Recent lists the latest recorded predictions, newest first.
func (s *PredictionService) Recent(ctx context.Context, limit int) (domain.PredictionsPage, error) {
	if s.repo == nil {
		return domain.PredictionsPage{Items: []domain.Prediction{}}, nil
	}
	return s.repo.ListPredictions(ctx, limit)
}
