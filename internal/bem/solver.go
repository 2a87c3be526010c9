package bem

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver finds panel strengths x with A·x ≈ b.
type Solver interface {
	Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error)
}

// DenseSolver solves with a dense factorization: LU for square systems,
// least squares (QR) for overdetermined and minimum norm (LQ) for
// underdetermined ones.
type DenseSolver struct{}

func (DenseSolver) Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	var x mat.VecDense
	err := x.SolveVec(a, b)

	// an ill-conditioned but finite solve still yields usable strengths
	var cond mat.Condition
	if err != nil && (!errors.As(err, &cond) || math.IsInf(float64(cond), 1)) {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	if _, c := a.Dims(); x.Len() != c {
		return nil, fmt.Errorf("%w: solve produced %d of %d unknowns", ErrSingular, x.Len(), c)
	}
	for i := 0; i < x.Len(); i++ {
		if v := x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite strength at unknown %d", ErrSingular, i)
		}
	}
	return &x, nil
}
