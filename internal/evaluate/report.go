// Package evaluate scores binary classifiers: classification report,
// confusion matrix, ROC/AUC, held-out splits and stratified cross-validation.
package evaluate

import (
	"fmt"

	"hotel_bookings/internal/domain"
)

// ConfusionMatrix counts rows by true class (first index) and predicted
// class (second index).
func ConfusionMatrix(yTrue, yPred []int) ([2][2]int, error) {
	var m [2][2]int
	if len(yTrue) != len(yPred) {
		return m, fmt.Errorf("confusion matrix: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t > 1 || p < 0 || p > 1 {
			return m, fmt.Errorf("confusion matrix: non-binary pair (%d, %d) at row %d", t, p, i)
		}
		m[t][p]++
	}
	return m, nil
}

// Report derives per-class precision, recall, F1 and support plus the macro
// and support-weighted averages. Undefined ratios are reported as 0.
func Report(yTrue, yPred []int) (domain.ClassificationReport, error) {
	m, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return domain.ClassificationReport{}, err
	}
	var classes [2]domain.ClassMetrics
	for c := 0; c < 2; c++ {
		tp := m[c][c]
		predicted := m[0][c] + m[1][c]
		actual := m[c][0] + m[c][1]
		p := ratio(tp, predicted)
		r := ratio(tp, actual)
		classes[c] = domain.ClassMetrics{Precision: p, Recall: r, F1: f1(p, r), Support: actual}
	}

	total := len(yTrue)
	rep := domain.ClassificationReport{
		NotCanceled: classes[0],
		Canceled:    classes[1],
		Accuracy:    ratio(m[0][0]+m[1][1], total),
	}
	for _, c := range classes {
		rep.MacroAvg.Precision += c.Precision / 2
		rep.MacroAvg.Recall += c.Recall / 2
		rep.MacroAvg.F1 += c.F1 / 2
		if total > 0 {
			w := float64(c.Support) / float64(total)
			rep.WeightedAvg.Precision += c.Precision * w
			rep.WeightedAvg.Recall += c.Recall * w
			rep.WeightedAvg.F1 += c.F1 * w
		}
	}
	rep.MacroAvg.Support = total
	rep.WeightedAvg.Support = total
	return rep, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
