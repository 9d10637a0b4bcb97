package forest

import (
	"math/rand"
	"sort"
)

// Node is one split or leaf of a tree. Leaves have Feature == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	// Prob is the share of canceled samples that reached the node.
	Prob    float64
	Samples int
}

// Tree stores nodes flat; the root is Nodes[0].
type Tree struct {
	Nodes []Node
}

func (t Tree) leaf(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Prob
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type grower struct {
	X      [][]float64
	y      []int
	cfg    Config
	mtry   int
	rng    *rand.Rand
	nodes  []Node
	impDec []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// growTree fits one CART tree on a bootstrap sample and returns it with its
// unnormalized impurity decrease per feature.
func growTree(X [][]float64, y []int, cfg Config, mtry int, seed int64) (Tree, []float64) {
	g := &grower{
		X:      X,
		y:      y,
		cfg:    cfg,
		mtry:   mtry,
		rng:    rand.New(rand.NewSource(seed)),
		impDec: make([]float64, len(X[0])),
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = g.rng.Intn(len(X))
	}
	g.grow(idx, 0)
	return Tree{Nodes: g.nodes}, g.impDec
}

func (g *grower) grow(idx []int, depth int) int {
	n := len(idx)
	pos := 0
	for _, i := range idx {
		pos += g.y[i]
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{
		Feature: -1,
		Left:    -1,
		Right:   -1,
		Prob:    float64(pos) / float64(n),
		Samples: n,
	})

	if pos == 0 || pos == n || n < 2*g.cfg.MinSamplesLeaf {
		return id
	}
	if g.cfg.MaxDepth > 0 && depth >= g.cfg.MaxDepth {
		return id
	}
	best, ok := g.bestSplit(idx, pos)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	g.impDec[best.feature] += best.gain

	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[id].Feature = best.feature
	g.nodes[id].Threshold = best.threshold
	g.nodes[id].Left = l
	g.nodes[id].Right = r
	return id
}

// bestSplit scans mtry randomly chosen features for the threshold with the
// largest weighted gini decrease. When none of them splits the node it keeps
// drawing features until one does or all were tried.
func (g *grower) bestSplit(idx []int, pos int) (split, bool) {
	n := len(idx)
	parent := float64(n) * gini(pos, n)
	minLeaf := g.cfg.MinSamplesLeaf

	var best split
	found := false
	order := make([]int, n)
	for k, f := range g.rng.Perm(len(g.X[0])) {
		if k >= g.mtry && found {
			break
		}
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return g.X[order[a]][f] < g.X[order[b]][f] })

		leftPos := 0
		for k := 0; k < n-1; k++ {
			leftPos += g.y[order[k]]
			lo, hi := g.X[order[k]][f], g.X[order[k+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			gain := parent - float64(nl)*gini(leftPos, nl) - float64(nr)*gini(pos-leftPos, nr)
			if gain > best.gain+1e-12 {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = split{feature: f, threshold: thr, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
