// Package forest is a bagged ensemble of CART trees for binary
// classification; class 1 is the positive class.
package forest

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_bookings/internal/domain"
)

var (
	ErrNotFitted = errors.New("forest: not fitted")
	ErrBadInput  = errors.New("forest: bad input")
)

type Config struct {
	NTrees int
	// MaxDepth 0 grows until leaves are pure.
	MaxDepth       int
	MinSamplesLeaf int
	// MaxFeatures 0 means sqrt of the feature count.
	MaxFeatures int
	Seed        int64
	Workers     int
}

func DefaultConfig() Config {
	return Config{
		NTrees:         100,
		MinSamplesLeaf: 1,
		Seed:           42,
		Workers:        runtime.NumCPU(),
	}
}

// Forest fields are exported for gob.
type Forest struct {
	Config      Config
	NFeatures   int
	Trees       []Tree
	Importances []float64
}

var _ domain.Classifier = (*Forest)(nil)

func init() {
	gob.Register(&Forest{})
}

func New(cfg Config) *Forest {
	d := DefaultConfig()
	if cfg.NTrees <= 0 {
		cfg.NTrees = d.NTrees
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = d.MinSamplesLeaf
	}
	if cfg.Workers <= 0 {
		cfg.Workers = d.Workers
	}
	return &Forest{Config: cfg}
}

// Factory returns a constructor for unfitted forests sharing cfg.
func Factory(cfg Config) func() domain.Classifier {
	return func() domain.Classifier { return New(cfg) }
}

func (f *Forest) Fit(X [][]float64, y []int) error {
	if err := checkTraining(X, y); err != nil {
		return err
	}
	start := time.Now()
	nf := len(X[0])
	mtry := f.Config.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Max(1, math.Floor(math.Sqrt(float64(nf)))))
	}
	if mtry > nf {
		mtry = nf
	}

	// Seeds are drawn up front so the ensemble does not depend on scheduling.
	master := rand.New(rand.NewSource(f.Config.Seed))
	seeds := make([]int64, f.Config.NTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]Tree, f.Config.NTrees)
	decs := make([][]float64, f.Config.NTrees)
	sem := semaphore.NewWeighted(int64(f.Config.Workers))
	var wg sync.WaitGroup
	ctx := context.Background()
	for i := range trees {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("forest: acquire worker: %w", err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			trees[i], decs[i] = growTree(X, y, f.Config, mtry, seeds[i])
		}(i)
	}
	wg.Wait()

	f.NFeatures = nf
	f.Trees = trees
	f.Importances = meanImportance(decs, nf)
	log.Debug().
		Int("trees", len(trees)).
		Int("rows", len(X)).
		Int("features", nf).
		Dur("duration", time.Since(start)).
		Msg("forest fitted")
	return nil
}

// PredictProba averages the leaf class shares of every tree.
func (f *Forest) PredictProba(X [][]float64) ([][2]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([][2]float64, len(X))
	for r, x := range X {
		if len(x) != f.NFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrBadInput, r, len(x), f.NFeatures)
		}
		var p float64
		for _, t := range f.Trees {
			p += t.leaf(x)
		}
		p /= float64(len(f.Trees))
		out[r] = [2]float64{1 - p, p}
	}
	return out, nil
}

func (f *Forest) Predict(X [][]float64) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		if p[1] > p[0] {
			out[i] = 1
		}
	}
	return out, nil
}

func (f *Forest) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

func checkTraining(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty training data", ErrBadInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrBadInput, len(X), len(y))
	}
	nf := len(X[0])
	if nf == 0 {
		return fmt.Errorf("%w: no features", ErrBadInput)
	}
	for i := range X {
		if len(X[i]) != nf {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrBadInput, i, len(X[i]), nf)
		}
		if y[i] != 0 && y[i] != 1 {
			return fmt.Errorf("%w: label %d at row %d is not binary", ErrBadInput, y[i], i)
		}
	}
	return nil
}

// meanImportance normalizes each tree's impurity decrease to sum 1 and
// averages over the trees.
func meanImportance(decs [][]float64, nf int) []float64 {
	out := make([]float64, nf)
	used := 0
	for _, d := range decs {
		var sum float64
		for _, v := range d {
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j, v := range d {
			out[j] += v / sum
		}
		used++
	}
	if used == 0 {
		return out
	}
	for j := range out {
		out[j] /= float64(used)
	}
	return out
}
