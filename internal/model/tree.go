package model

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"

	"deskinsight/internal/domain"
)

const (
	// Gaps between consecutive feature values below this are not split on.
	featureThreshold = 1e-7
	impurityEpsilon  = 0x1p-52
)

// Node is one node of a fitted classification tree. Leaves have nil children.
// Value holds the weighted class counts of the training rows that reached the
// node; Samples counts those rows regardless of weight.
type Node struct {
	Feature   int
	Threshold float64
	Impurity  float64
	Samples   int
	Value     [2]float64
	Left      *Node
	Right     *Node
}

func (n *Node) Leaf() bool { return n.Left == nil }

// Class is the majority label of the node; ties go to class 0.
func (n *Node) Class() int {
	if n.Value[1] > n.Value[0] {
		return 1
	}
	return 0
}

// TreeParams controls tree growth. Zero MaxDepth means unlimited, zero
// MaxFeatures means every feature is considered at each split.
type TreeParams struct {
	MaxDepth        int
	MaxFeatures     int
	MinSamplesSplit int
}

// Tree is a CART classifier grown with Gini impurity.
type Tree struct {
	Root *Node
}

// FitTree grows a tree on rows with positive weight. A nil weights slice
// weighs every row 1. Candidate features are visited in an order drawn from
// rng, so equally good splits are broken by the seed.
func FitTree(x [][]float64, y []int, weights []float64, params TreeParams, rng *rand.Rand) (*Tree, error) {
	if len(x) != len(y) || (weights != nil && len(weights) != len(y)) {
		return nil, errors.New("tree: mismatched training data")
	}
	if weights == nil {
		weights = make([]float64, len(y))
		for i := range weights {
			weights[i] = 1
		}
	}
	idx := make([]int, 0, len(y))
	for i, w := range weights {
		if w > 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, errors.New("tree: no training rows")
	}
	for _, label := range y {
		if label != 0 && label != 1 {
			return nil, errors.New("tree: labels must be 0 or 1")
		}
	}
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	if params.MaxFeatures <= 0 || params.MaxFeatures > domain.NumFeatures {
		params.MaxFeatures = domain.NumFeatures
	}

	b := &treeBuilder{x: x, y: y, w: weights, params: params, rng: rng}
	return &Tree{Root: b.build(idx, 0)}, nil
}

func (t *Tree) leaf(row []float64) *Node {
	n := t.Root
	for !n.Leaf() {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

// Proba returns the class distribution of the leaf row falls into.
func (t *Tree) Proba(row []float64) [2]float64 {
	v := t.leaf(row).Value
	total := v[0] + v[1]
	return [2]float64{v[0] / total, v[1] / total}
}

func (t *Tree) Predict(row []float64) int {
	return t.leaf(row).Class()
}

// Depth is the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(*Node) int
	walk = func(n *Node) int {
		if n.Leaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(t.Root)
}

type treeBuilder struct {
	x      [][]float64
	y      []int
	w      []float64
	params TreeParams
	rng    *rand.Rand
}

type split struct {
	feature     int
	threshold   float64
	improvement float64
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	node := &Node{Feature: -1, Samples: len(idx)}
	for _, i := range idx {
		node.Value[b.y[i]] += b.w[i]
	}
	node.Impurity = gini(node.Value)

	if (b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) ||
		len(idx) < b.params.MinSamplesSplit ||
		node.Impurity <= impurityEpsilon {
		return node
	}

	best, ok := b.bestSplit(idx, node)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = b.build(left, depth+1)
	node.Right = b.build(right, depth+1)
	return node
}

// bestSplit scans up to MaxFeatures non-constant features. The first valid
// split is taken even without impurity gain; later ones must improve on it.
func (b *treeBuilder) bestSplit(idx []int, node *Node) (split, bool) {
	best := split{feature: -1, improvement: math.Inf(-1)}
	total := node.Value[0] + node.Value[1]
	sorted := make([]int, len(idx))
	visited := 0

	for _, f := range b.rng.Perm(domain.NumFeatures) {
		if visited >= b.params.MaxFeatures {
			break
		}
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(a, c int) int {
			switch va, vc := b.x[a][f], b.x[c][f]; {
			case va < vc:
				return -1
			case va > vc:
				return 1
			}
			return 0
		})
		if b.x[sorted[len(sorted)-1]][f] <= b.x[sorted[0]][f]+featureThreshold {
			continue
		}
		visited++

		var left [2]float64
		for p := 0; p < len(sorted)-1; p++ {
			r := sorted[p]
			left[b.y[r]] += b.w[r]
			lo, hi := b.x[r][f], b.x[sorted[p+1]][f]
			if hi <= lo+featureThreshold {
				continue
			}
			right := [2]float64{node.Value[0] - left[0], node.Value[1] - left[1]}
			wl := left[0] + left[1]
			wr := total - wl
			improvement := node.Impurity - (wl/total)*gini(left) - (wr/total)*gini(right)
			if improvement > best.improvement {
				best = split{feature: f, threshold: midpoint(lo, hi), improvement: improvement}
			}
		}
	}
	return best, best.feature >= 0
}

func midpoint(lo, hi float64) float64 {
	t := lo/2 + hi/2
	if t == hi || math.IsInf(t, 0) {
		return lo
	}
	return t
}

func gini(counts [2]float64) float64 {
	total := counts[0] + counts[1]
	if total <= 0 {
		return 0
	}
	p0, p1 := counts[0]/total, counts[1]/total
	return 1 - p0*p0 - p1*p1
}
