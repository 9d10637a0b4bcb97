package domain

import (
	"encoding/json"
	"time"
)

// Target class labels, indexed by class.
var ClassNames = [2]string{"Not Canceled", "Canceled"}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationReport mirrors a per-class precision/recall/F1 table with
// macro and support-weighted averages.
type ClassificationReport struct {
	NotCanceled ClassMetrics `json:"not_canceled"`
	Canceled    ClassMetrics `json:"canceled"`
	Accuracy    float64      `json:"accuracy"`
	MacroAvg    ClassMetrics `json:"macro_avg"`
	WeightedAvg ClassMetrics `json:"weighted_avg"`
}

// ROCCurve points are ordered by increasing false positive rate.
type ROCCurve struct {
	FPR        []float64 `json:"fpr"`
	TPR        []float64 `json:"tpr"`
	Thresholds []float64 `json:"thresholds"`
}

// CVScores are the means over the cross-validation folds.
type CVScores struct {
	Folds     int     `json:"folds"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Metrics is the fixed-shape evaluation record of one training run.
type Metrics struct {
	AUC                  float64              `json:"auc_score"`
	ClassificationReport ClassificationReport `json:"classification_report"`
	ConfusionMatrix      [2][2]int            `json:"confusion_matrix"`
	ROC                  ROCCurve             `json:"roc_curve"`
	FeatureImportance    map[string]float64   `json:"feature_importance"`
	CV                   CVScores             `json:"cv_scores"`
	FeatureNames         []string             `json:"feature_names"`
	CountryNames         []string             `json:"country_names"`
	TrainedAt            time.Time            `json:"trained_at"`
}

// ModelBundle is the artifact of one training run, persisted and loaded as a
// unit.
type ModelBundle struct {
	Classifier Classifier
	Encoders   *EncoderSet
	Metrics    Metrics
}

// Prediction is the outcome for one booking submitted through the form.
type Prediction struct {
	ID              string          `json:"id"`
	Label           int             `json:"label"`
	ProbNotCanceled float64         `json:"probability_not_canceled"`
	ProbCanceled    float64         `json:"probability_canceled"`
	Input           json.RawMessage `json:"input,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type PredictionsPage struct {
	Items []Prediction `json:"items"`
}
