package dataset

import (
	"math"
	"math/rand/v2"

	"deskinsight/internal/domain"
)

// DefaultTestRatio is the share of rows held out for evaluation.
const DefaultTestRatio = 0.2

// Partition is one train/test assignment of a dataset.
type Partition struct {
	Train []domain.TrainingExample
	Test  []domain.TrainingExample
	// Seed is the seed the rows were shuffled with, for logging.
	Seed uint64
}

func (p Partition) TrainX() [][]float64 { return features(p.Train) }
func (p Partition) TrainY() []int       { return labels(p.Train) }
func (p Partition) TestX() [][]float64  { return features(p.Test) }
func (p Partition) TestY() []int        { return labels(p.Test) }

func features(examples []domain.TrainingExample) [][]float64 {
	x := make([][]float64, len(examples))
	for i, ex := range examples {
		x[i] = ex.Features()
	}
	return x
}

func labels(examples []domain.TrainingExample) []int {
	y := make([]int, len(examples))
	for i, ex := range examples {
		y[i] = ex.IsCritical
	}
	return y
}

type Splitter interface {
	Split(examples []domain.TrainingExample) (Partition, error)
}

// SplitterFunc adapts a function to the Splitter interface.
type SplitterFunc func([]domain.TrainingExample) (Partition, error)

func (f SplitterFunc) Split(examples []domain.TrainingExample) (Partition, error) {
	return f(examples)
}

// RandomSplitter holds out ceil(TestRatio*n) rows chosen by a random
// permutation. A nil Seed draws a fresh seed on every call.
type RandomSplitter struct {
	TestRatio float64
	Seed      *uint64
}

func (s RandomSplitter) Split(examples []domain.TrainingExample) (Partition, error) {
	n := len(examples)
	ratio := s.TestRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultTestRatio
	}
	nTest := int(math.Ceil(ratio * float64(n)))
	if n == 0 || nTest >= n {
		return Partition{}, &domain.InsufficientDataError{Total: n, Train: max(n-nTest, 0)}
	}

	seed := rand.Uint64()
	if s.Seed != nil {
		seed = *s.Seed
	}
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)

	p := Partition{
		Train: make([]domain.TrainingExample, 0, n-nTest),
		Test:  make([]domain.TrainingExample, 0, nTest),
		Seed:  seed,
	}
	for _, idx := range perm[:nTest] {
		p.Test = append(p.Test, examples[idx])
	}
	for _, idx := range perm[nTest:] {
		p.Train = append(p.Train, examples[idx])
	}
	return p, nil
}
