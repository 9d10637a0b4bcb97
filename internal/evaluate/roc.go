package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"hotel_bookings/internal/domain"
)

var ErrSingleClass = errors.New("evaluate: ROC needs both classes")

// ROC computes the curve of scores against the positive class 1. Points are
// ordered by increasing false positive rate; the first threshold lies above
// every score.
func ROC(yTrue []int, scores []float64) (domain.ROCCurve, error) {
	if len(yTrue) != len(scores) {
		return domain.ROCCurve{}, fmt.Errorf("roc: %d labels but %d scores", len(yTrue), len(scores))
	}
	pos := 0
	for _, v := range yTrue {
		pos += v
	}
	if pos == 0 || pos == len(yTrue) {
		return domain.ROCCurve{}, ErrSingleClass
	}

	y := append([]float64(nil), scores...)
	classes := make([]bool, len(yTrue))
	for i, v := range yTrue {
		classes[i] = v == 1
	}
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)

	if len(fpr) > 1 && fpr[0] > fpr[len(fpr)-1] {
		reverse(fpr)
		reverse(tpr)
		reverse(thresh)
	}
	lo, hi := y[0], y[len(y)-1]
	for i, t := range thresh {
		switch {
		case math.IsInf(t, 1):
			thresh[i] = hi + 1
		case math.IsInf(t, -1):
			thresh[i] = lo - 1
		}
	}
	return domain.ROCCurve{FPR: fpr, TPR: tpr, Thresholds: thresh}, nil
}

// AUC is the trapezoidal area under a curve returned by ROC.
func AUC(c domain.ROCCurve) float64 {
	if len(c.FPR) < 2 {
		return 0
	}
	return integrate.Trapezoidal(c.FPR, c.TPR)
}

// ROCAUC scores in one step.
func ROCAUC(yTrue []int, scores []float64) (float64, error) {
	c, err := ROC(yTrue, scores)
	if err != nil {
		return 0, err
	}
	return AUC(c), nil
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
