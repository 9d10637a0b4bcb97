package evaluate

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainTestSplit shuffles row indices with seed and holds out
// ceil(testSize*n) of them.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("split: test size %v outside (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("split: %d rows cannot hold out %v", n, testSize)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold shuffles each class with seed and deals its rows round
// robin over k folds, so every fold keeps the class balance of y.
func StratifiedKFold(y []int, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("kfold: need at least 2 folds, got %d", k)
	}
	if k > len(y) {
		return nil, fmt.Errorf("kfold: %d folds for %d rows", k, len(y))
	}
	rng := rand.New(rand.NewSource(seed))
	byClass := [2][]int{}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("kfold: label %d at row %d is not binary", v, i)
		}
		byClass[v] = append(byClass[v], i)
	}

	member := make([]int, len(y))
	next := 0
	for _, rows := range byClass {
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		for _, r := range rows {
			member[r] = next % k
			next++
		}
	}

	folds := make([]Fold, k)
	for i, f := range member {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

// Select gathers the rows at idx.
func Select(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, r := range idx {
		xs[i] = X[r]
		ys[i] = y[r]
	}
	return xs, ys
}
