package domain

import "context"

// Classifier is the pluggable binary classification capability. Class 1 is
// "canceled".
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
	// PredictProba returns [P(class 0), P(class 1)] per row.
	PredictProba(X [][]float64) ([][2]float64, error)
	// FeatureImportances is indexed like the columns of X.
	FeatureImportances() []float64
}

type ArtifactStore interface {
	// Save persists the bundle unless an artifact already exists; written
	// reports whether anything was written.
	Save(ctx context.Context, b ModelBundle) (written bool, err error)
	Load(ctx context.Context) (ModelBundle, error)
}

type PredictionRepository interface {
	InsertPrediction(ctx context.Context, p Prediction) error
	ListPredictions(ctx context.Context, limit int) (PredictionsPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Memo is a process-lifetime cache: the first successful load of a key wins
// and later callers reuse it.
type Memo interface {
	Load(key string, fn func() (any, error)) (any, error)
}

// GeoSource fetches the geographic reference data as a GeoJSON document.
type GeoSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}
