package bem

import (
	"fmt"
	"math"

	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/influence"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Block locates one reactive collection inside a System.
type Block struct {
	Surfaces *elements.Surfaces
	Row      int
	Col      int
}

// System is the influence-coefficient system for every reactive panel: A
// maps the two sheet strengths of each panel to the projected velocities at
// each panel centroid, and B holds the stacked right-hand sides.
type System struct {
	A      *mat.Dense
	B      *mat.VecDense
	Blocks []Block
}

func (s *System) Rows() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Surfaces.NumRows()
	}
	return n
}

func (s *System) Cols() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Surfaces.NumCols()
	}
	return n
}

// Empty reports whether the system has no unknowns.
func (s *System) Empty() bool { return s.A == nil }

// Assemble builds the coefficient matrix and right-hand side over the
// reactive collections in bdry. The velocities of those collections must
// already be finalized. Non-reactive collections are skipped.
func Assemble(bdry []*elements.Surfaces, be compute.Backend) *System {
	if be == nil {
		be = compute.GetBackend()
	}

	sys := &System{}
	row, col := 0, 0
	for _, s := range bdry {
		if s.Category() != elements.Reactive || s.NumPanels() == 0 {
			continue
		}
		sys.Blocks = append(sys.Blocks, Block{Surfaces: s, Row: row, Col: col})
		row += s.NumRows()
		col += s.NumCols()
	}
	if row == 0 || col == 0 {
		return sys
	}

	sys.A = mat.NewDense(row, col, nil)
	b := make([]float64, 0, row)
	for _, targ := range sys.Blocks {
		for _, src := range sys.Blocks {
			fillBlock(sys.A, targ, src, be)
		}
		b = append(b, RHS(targ.Surfaces)...)
	}
	sys.B = mat.NewVecDense(row, b)
	return sys
}

// fillBlock writes the coefficients of the src panels acting on the targ
// panels. Each target panel owns its rows, so workers never share a row.
func fillBlock(a *mat.Dense, targ, src Block, be compute.Backend) {
	const factor = 0.25 / math.Pi
	ts, ss := targ.Surfaces, src.Surfaces
	nbc := ts.NumBCs()
	t1, t2, norm := ts.Tangent1(), ts.Tangent2(), ts.Normals()
	st1, st2, sarea := ss.Tangent1(), ss.Tangent2(), ss.Areas()

	be.ParallelFor(ts.NumPanels(), func(start, end int) {
		for i := start; i < end; i++ {
			r0 := targ.Row + nbc*i
			for j := 0; j < ss.NumPanels(); j++ {
				for k, tk := range [2]r3.Vec{st1[j], st2[j]} {
					str := r3.Scale(sarea[j], tk)
					vel := r3.Scale(factor, influence.PanelInfluence(ss, j, str, ts, i))
					c := src.Col + 2*j + k
					switch nbc {
					case 1:
						a.Set(r0, c, r3.Dot(vel, norm[i]))
					case 2:
						a.Set(r0, c, r3.Dot(vel, t1[i]))
						a.Set(r0+1, c, r3.Dot(vel, t2[i]))
					case 3:
						a.Set(r0, c, r3.Dot(vel, t1[i]))
						a.Set(r0+1, c, r3.Dot(vel, t2[i]))
						a.Set(r0+2, c, r3.Dot(vel, norm[i]))
					}
				}
			}
		}
	})
}

// Distribute writes a solution vector back into the collections as sheet
// strengths, which refreshes their absolute strengths.
func (s *System) Distribute(x mat.Vector) error {
	if x.Len() != s.Cols() {
		return fmt.Errorf("bem: solution has %d entries, system has %d unknowns", x.Len(), s.Cols())
	}
	for _, b := range s.Blocks {
		vals := make([]float64, b.Surfaces.NumCols())
		for k := range vals {
			vals[k] = x.AtVec(b.Col + k)
		}
		if err := b.Surfaces.SetStrengths(vals); err != nil {
			return err
		}
	}
	return nil
}

// Solve solves the system with solver and distributes the result. An empty
// system is a no-op.
func (s *System) Solve(solver Solver) error {
	if s.Empty() {
		return nil
	}
	if solver == nil {
		solver = DenseSolver{}
	}
	x, err := solver.Solve(s.A, s.B)
	if err != nil {
		return err
	}
	return s.Distribute(x)
}
