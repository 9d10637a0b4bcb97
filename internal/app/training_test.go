package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hotel_bookings/internal/app"
	"hotel_bookings/internal/domain"
	"hotel_bookings/internal/forest"
	"hotel_bookings/internal/pipeline"
)

func trainOpts() app.TrainingOptions {
	return app.TrainingOptions{TestSize: 0.25, Seed: 42, Folds: 3, CountryThreshold: 10}
}

func smallForest() func() domain.Classifier {
	return forest.Factory(forest.Config{NTrees: 15, Seed: 7, Workers: 2})
}

func train(t *testing.T, store domain.ArtifactStore) app.TrainingResult {
	t.Helper()
	svc := app.NewTrainingService(newTableSource(trainingRows()...), store, smallForest(), trainOpts())
	res, err := svc.Train(context.Background())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	return res
}

func TestTrain_BundlesMetricsAndEncoders(t *testing.T) {
	store := &memStore{}
	res := train(t, store)

	if !res.Written || store.bundle == nil {
		t.Fatalf("expected the bundle to be persisted")
	}
	if res.TestRows != 15 || res.TrainRows != 45 {
		t.Fatalf("split %d/%d, want 45/15", res.TrainRows, res.TestRows)
	}
	m := res.Bundle.Metrics
	if !reflect.DeepEqual(m.FeatureNames, pipeline.FeatureNames) {
		t.Fatalf("feature names %v", m.FeatureNames)
	}
	if want := []string{"GBR", "Other", "PRT"}; !reflect.DeepEqual(m.CountryNames, want) {
		t.Fatalf("country names %v, want %v", m.CountryNames, want)
	}
	if m.AUC < 0.9 || m.ClassificationReport.Accuracy < 0.9 {
		t.Fatalf("separable data should score high, auc=%v acc=%v", m.AUC, m.ClassificationReport.Accuracy)
	}
	if m.CV.Folds != 3 || m.CV.ROCAUC < 0.9 {
		t.Fatalf("cv scores %+v", m.CV)
	}
	support := m.ClassificationReport.NotCanceled.Support + m.ClassificationReport.Canceled.Support
	if support != res.TestRows {
		t.Fatalf("report support %d, want %d", support, res.TestRows)
	}
	if len(m.FeatureImportance) != len(pipeline.FeatureNames) {
		t.Fatalf("importances for %d features", len(m.FeatureImportance))
	}
	if m.TrainedAt.IsZero() || m.TrainedAt.Location().String() != "UTC" {
		t.Fatalf("trained_at %v", m.TrainedAt)
	}
}

func TestTrain_KeepsExistingArtifacts(t *testing.T) {
	store := &memStore{}
	first := train(t, store)
	second := train(t, store)

	if second.Written {
		t.Fatalf("second run should not overwrite")
	}
	if store.saves != 2 {
		t.Fatalf("expected both runs to reach the store, got %d", store.saves)
	}
	if !store.bundle.Metrics.TrainedAt.Equal(first.Bundle.Metrics.TrainedAt) {
		t.Fatalf("stored bundle was replaced")
	}
}

func TestTrain_SchemaMismatch(t *testing.T) {
	src := newTableSource(trainingRows()...)
	src.csv = "hotel,is_canceled\nCity Hotel,0\n"
	svc := app.NewTrainingService(src, &memStore{}, smallForest(), trainOpts())
	_, err := svc.Train(context.Background())
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
