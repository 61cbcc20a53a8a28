package model

import (
	"errors"
	"math"
	"math/rand/v2"

	"deskinsight/internal/domain"
)

const (
	ForestSize     = 10
	ForestMaxDepth = 2
)

// Forest is a bagged ensemble of shallow trees.
type Forest struct {
	Trees []*Tree
}

// FitForest trains ForestSize trees, each on a bootstrap sample of the rows
// and considering sqrt(NumFeatures) features per split. The same seed and
// data give the same forest.
func FitForest(x [][]float64, y []int, seed uint64) (*Forest, error) {
	n := len(y)
	if n == 0 {
		return nil, errors.New("forest: no training rows")
	}
	params := TreeParams{
		MaxDepth:        ForestMaxDepth,
		MaxFeatures:     max(1, int(math.Sqrt(domain.NumFeatures))),
		MinSamplesSplit: 2,
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	f := &Forest{Trees: make([]*Tree, 0, ForestSize)}
	for range ForestSize {
		treeSeed := rng.Uint64()
		treeRNG := rand.New(rand.NewPCG(treeSeed, treeSeed))

		weights := make([]float64, n)
		for range n {
			weights[treeRNG.IntN(n)]++
		}
		t, err := FitTree(x, y, weights, params, treeRNG)
		if err != nil {
			return nil, err
		}
		f.Trees = append(f.Trees, t)
	}
	return f, nil
}

// Proba averages the class distributions of the member trees.
func (f *Forest) Proba(row []float64) [2]float64 {
	var sum [2]float64
	for _, t := range f.Trees {
		p := t.Proba(row)
		sum[0] += p[0]
		sum[1] += p[1]
	}
	k := float64(len(f.Trees))
	return [2]float64{sum[0] / k, sum[1] / k}
}

// Predict returns the class with the highest mean probability; ties go to 0.
func (f *Forest) Predict(row []float64) int {
	p := f.Proba(row)
	if p[1] > p[0] {
		return 1
	}
	return 0
}
