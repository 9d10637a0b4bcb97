package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/adapters/observability"
	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/evaluate"
	"hotel_bookings/internal/pipeline"
)

type TrainingOptions struct {
	TestSize         float64
	Seed             int64
	Folds            int
	CountryThreshold int
}

type TrainingResult struct {
	Bundle    domain.ModelBundle
	Written   bool
	TrainRows int
	TestRows  int
}

// TrainingService runs the offline pipeline: clean, encode, fit, evaluate,
// persist once.
type TrainingService struct {
	src           TableSource
	store         domain.ArtifactStore
	newClassifier func() domain.Classifier
	opts          TrainingOptions
	now           func() time.Time
}

func NewTrainingService(src TableSource, store domain.ArtifactStore, newClassifier func() domain.Classifier, opts TrainingOptions) *TrainingService {
	return &TrainingService{src: src, store: store, newClassifier: newClassifier, opts: opts, now: time.Now}
}

func (s *TrainingService) Train(ctx context.Context) (TrainingResult, error) {
	start := time.Now()
	ds, err := LoadDataset(ctx, s.src)
	if err != nil {
		return TrainingResult{}, err
	}
	observability.ObserveStage("load", start)

	start = time.Now()
	table, enc, err := pipeline.NewFeatureBuilder(s.opts.CountryThreshold).Fit(ds.Bookings)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("build features: %w", err)
	}
	observability.ObserveStage("features", start)

	train, test, err := evaluate.TrainTestSplit(len(table.Rows), s.opts.TestSize, s.opts.Seed)
	if err != nil {
		return TrainingResult{}, err
	}
	trX, trY := evaluate.Select(table.Rows, table.Target, train)
	teX, teY := evaluate.Select(table.Rows, table.Target, test)

	start = time.Now()
	clf := s.newClassifier()
	if err := clf.Fit(trX, trY); err != nil {
		return TrainingResult{}, fmt.Errorf("fit: %w", err)
	}
	observability.ObserveStage("fit", start)

	holdout, err := evaluate.Evaluate(clf, teX, teY)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("evaluate: %w", err)
	}

	start = time.Now()
	cv, err := evaluate.CrossValidate(table.Rows, table.Target, s.opts.Folds, s.opts.Seed, s.newClassifier)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("cross-validate: %w", err)
	}
	observability.ObserveStage("cv", start)

	imp := clf.FeatureImportances()
	byName := make(map[string]float64, len(table.Names))
	for i, name := range table.Names {
		if i < len(imp) {
			byName[name] = imp[i]
		}
	}
	var countries []string
	if e, ok := enc.Encoder(domain.ColCountry); ok {
		countries = append(countries, e.Classes...)
	}

	bundle := domain.ModelBundle{
		Classifier: clf,
		Encoders:   enc,
		Metrics: domain.Metrics{
			AUC:                  holdout.AUC,
			ClassificationReport: holdout.Report,
			ConfusionMatrix:      holdout.Confusion,
			ROC:                  holdout.ROC,
			FeatureImportance:    byName,
			CV:                   cv,
			FeatureNames:         table.Names,
			CountryNames:         countries,
			TrainedAt:            s.now().UTC(),
		},
	}
	log.Info().
		Int("train_rows", len(train)).
		Int("test_rows", len(test)).
		Float64("auc", holdout.AUC).
		Float64("accuracy", holdout.Report.Accuracy).
		Float64("cv_roc_auc", cv.ROCAUC).
		Msg("model evaluated")

	written, err := s.store.Save(ctx, bundle)
	if err != nil {
		return TrainingResult{}, fmt.Errorf("save artifacts: %w", err)
	}
	if !written {
		log.Warn().Msg("existing artifacts kept; this run was not persisted")
	}
	return TrainingResult{Bundle: bundle, Written: written, TrainRows: len(train), TestRows: len(test)}, nil
}
