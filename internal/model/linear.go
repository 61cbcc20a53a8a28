package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RegressionThreshold is the score at or above which the regression model
// calls a ticket critical.
const RegressionThreshold = 5.0

// Linear is an ordinary least-squares model with intercept.
type Linear struct {
	Coef      []float64
	Intercept float64
}

// FitLinear solves the centered least-squares problem with an SVD and keeps
// the minimum-norm solution when the design matrix is rank deficient.
func FitLinear(x [][]float64, y []float64) (*Linear, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, errors.New("linear: empty or mismatched training data")
	}
	p := len(x[0])

	xMean := make([]float64, p)
	for _, row := range x {
		floats.Add(xMean, row)
	}
	floats.Scale(1/float64(n), xMean)
	yMean := floats.Sum(y) / float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewDense(n, 1, nil)
	for i, row := range x {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.Set(i, 0, y[i]-yMean)
	}

	coef := make([]float64, p)
	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return nil, errors.New("linear: SVD did not converge")
	}
	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(n, p))
	if rank := svd.Rank(rcond); rank > 0 {
		var sol mat.Dense
		svd.SolveTo(&sol, yc, rank)
		for j := range coef {
			coef[j] = sol.At(j, 0)
		}
	}

	return &Linear{Coef: coef, Intercept: yMean - floats.Dot(coef, xMean)}, nil
}

func (l *Linear) Score(row []float64) float64 {
	return l.Intercept + floats.Dot(l.Coef, row)
}

// Critical applies the fixed, inclusive regression threshold.
func Critical(score float64) bool {
	return score >= RegressionThreshold
}
