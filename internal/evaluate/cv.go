package evaluate

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"hotel_bookings/internal/domain"
)

// Holdout is the evaluation of a fitted classifier on unseen rows.
type Holdout struct {
	Report    domain.ClassificationReport
	Confusion [2][2]int
	ROC       domain.ROCCurve
	AUC       float64
}

func Evaluate(c domain.Classifier, X [][]float64, y []int) (Holdout, error) {
	pred, err := c.Predict(X)
	if err != nil {
		return Holdout{}, fmt.Errorf("predict: %w", err)
	}
	proba, err := c.PredictProba(X)
	if err != nil {
		return Holdout{}, fmt.Errorf("predict proba: %w", err)
	}
	rep, err := Report(y, pred)
	if err != nil {
		return Holdout{}, err
	}
	cm, err := ConfusionMatrix(y, pred)
	if err != nil {
		return Holdout{}, err
	}
	curve, err := ROC(y, positive(proba))
	if err != nil {
		return Holdout{}, err
	}
	return Holdout{Report: rep, Confusion: cm, ROC: curve, AUC: AUC(curve)}, nil
}

// CrossValidate fits a fresh classifier per stratified fold and returns the
// mean scores. Precision, recall and F1 are for the canceled class.
func CrossValidate(X [][]float64, y []int, k int, seed int64, newClassifier func() domain.Classifier) (domain.CVScores, error) {
	folds, err := StratifiedKFold(y, k, seed)
	if err != nil {
		return domain.CVScores{}, err
	}
	acc := make([]float64, k)
	prec := make([]float64, k)
	rec := make([]float64, k)
	f1s := make([]float64, k)
	aucs := make([]float64, k)
	for i, fold := range folds {
		trX, trY := Select(X, y, fold.Train)
		teX, teY := Select(X, y, fold.Test)
		c := newClassifier()
		if err := c.Fit(trX, trY); err != nil {
			return domain.CVScores{}, fmt.Errorf("fold %d: fit: %w", i, err)
		}
		h, err := Evaluate(c, teX, teY)
		if err != nil {
			return domain.CVScores{}, fmt.Errorf("fold %d: %w", i, err)
		}
		acc[i] = h.Report.Accuracy
		prec[i] = h.Report.Canceled.Precision
		rec[i] = h.Report.Canceled.Recall
		f1s[i] = h.Report.Canceled.F1
		aucs[i] = h.AUC
		log.Debug().Int("fold", i).Float64("accuracy", acc[i]).Float64("roc_auc", aucs[i]).Msg("fold scored")
	}
	return domain.CVScores{
		Folds:     k,
		Accuracy:  stat.Mean(acc, nil),
		Precision: stat.Mean(prec, nil),
		Recall:    stat.Mean(rec, nil),
		F1:        stat.Mean(f1s, nil),
		ROCAUC:    stat.Mean(aucs, nil),
	}, nil
}

func positive(proba [][2]float64) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		out[i] = p[1]
	}
	return out
}
