package elements

import (
	"fmt"
	"math"

	"github.com/san-kum/vortex/internal/kernels"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surfaces is a collection of flat triangular panels sharing a node list.
//
// Each panel carries an orthonormal basis (t1, t2, n) with n pointing into
// the fluid, its area, a velocity evaluated at its centroid, and, unless
// inert, a two-component vortex-sheet strength expressed along t1 and t2.
// The absolute strength used by the kernels is derived from the sheet
// strength, basis and area and is kept in step with all three.
type Surfaces struct {
	nodes
	tris [][3]int

	// geometry, valid for panels [0, len(area))
	t1   []r3.Vec
	t2   []r3.Vec
	norm []r3.Vec
	area []float64

	pu []r3.Vec
	vs [][2]float64
	ss Optional[[]float64]
	ps []r3.Vec

	// values per panel: 2 or 3 for active, 1..3 boundary conditions for
	// reactive, fixed by the first non-empty Add
	nval int
	bc   []float64

	vol float64
	utc r3.Vec
	tc  r3.Vec
}

// NewSurfaces builds a panel collection. x holds node positions (stride 3),
// idx holds three node indices per panel, and val holds per-panel values:
// vortex-sheet strengths (2, or 3 with a source-sheet strength) for active
// panels, boundary conditions (1 normal; 2 tangential; 3 tangential+normal)
// for reactive panels, and is ignored for inert panels.
func NewSurfaces(x []float64, idx []int, val []float64, cat Category, mov Movement, body *Body) (*Surfaces, error) {
	s := &Surfaces{
		nodes: newNodes(cat, mov, body),
		vol:   -1,
	}
	if err := s.Add(x, idx, val); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends nodes and panels. Indices in idx refer to the new nodes in x.
// Geometry of existing panels is kept; only new panels get bases and areas.
func (s *Surfaces) Add(x []float64, idx []int, val []float64) error {
	if len(idx)%3 != 0 {
		return fmt.Errorf("%w: index array length %d is not a multiple of 3", ErrMalformedInput, len(idx))
	}
	npan := len(idx) / 3

	pos, err := unpackVecs(x, "position")
	if err != nil {
		return err
	}
	if npan == 0 {
		if len(pos) > 0 {
			return fmt.Errorf("%w: %d nodes given without panels", ErrMalformedInput, len(pos))
		}
		if s.cat != Inert && len(val) > 0 {
			return fmt.Errorf("%w: %d values given without panels", ErrMalformedInput, len(val))
		}
		return nil
	}
	for i, id := range idx {
		if id < 0 || id >= len(pos) {
			return fmt.Errorf("%w: panel %d references node %d but only %d nodes were given",
				ErrMalformedInput, i/3, id, len(pos))
		}
	}

	nper, err := s.checkValues(val, npan)
	if err != nil {
		return err
	}

	nnold := len(s.x)
	s.appendNodes(pos)
	for i := 0; i < npan; i++ {
		s.tris = append(s.tris, [3]int{nnold + idx[3*i], nnold + idx[3*i+1], nnold + idx[3*i+2]})
	}
	s.pu = append(s.pu, make([]r3.Vec, npan)...)

	s.ComputeBases(len(s.tris))

	switch s.cat {
	case Active:
		src, hasSrc := s.ss.Get()
		for i := 0; i < npan; i++ {
			s.vs = append(s.vs, [2]float64{val[nper*i], val[nper*i+1]})
			if hasSrc {
				src = append(src, val[nper*i+2])
			}
		}
		if hasSrc {
			s.ss = Some(src)
		}
	case Reactive:
		s.bc = append(s.bc, val...)
		s.vs = append(s.vs, make([][2]float64, npan)...)
	case Inert:
	}
	s.refreshStrengths()

	if s.mov == BodyBound {
		return s.SetGeomCenter()
	}
	return nil
}

// checkValues validates the value array against the category and against
// the layout fixed by earlier additions.
func (s *Surfaces) checkValues(val []float64, npan int) (int, error) {
	if s.cat == Inert {
		return 0, nil
	}
	if len(val)%npan != 0 {
		return 0, fmt.Errorf("%w: value array length %d is not a multiple of panel count %d",
			ErrMalformedInput, len(val), npan)
	}
	nper := len(val) / npan

	switch s.cat {
	case Active:
		if nper != 2 && nper != 3 {
			return 0, fmt.Errorf("%w: active panels need 2 or 3 values each, got %d", ErrMalformedInput, nper)
		}
	case Reactive:
		if nper < 1 || nper > 3 {
			return 0, fmt.Errorf("%w: reactive panels need 1 to 3 boundary conditions, got %d", ErrMalformedInput, nper)
		}
	}

	if s.nval == 0 {
		s.nval = nper
		if s.cat == Active && nper == 3 {
			s.ss = Some([]float64{})
		}
	} else if s.nval != nper {
		return 0, fmt.Errorf("%w: collection holds %d values per panel, got %d", ErrMalformedInput, s.nval, nper)
	}
	return nper, nil
}

func (s *Surfaces) NumPanels() int                   { return len(s.tris) }
func (s *Surfaces) Triangles() [][3]int              { return s.tris }
func (s *Surfaces) Tangent1() []r3.Vec               { return s.t1 }
func (s *Surfaces) Tangent2() []r3.Vec               { return s.t2 }
func (s *Surfaces) Normals() []r3.Vec                { return s.norm }
func (s *Surfaces) Areas() []float64                 { return s.area }
func (s *Surfaces) Vels() []r3.Vec                   { return s.pu }
func (s *Surfaces) VortexSheet() [][2]float64        { return s.vs }
func (s *Surfaces) SourceSheet() Optional[[]float64] { return s.ss }
func (s *Surfaces) Strengths() []r3.Vec              { return s.ps }
func (s *Surfaces) BCs() []float64                   { return s.bc }
func (s *Surfaces) Volume() float64                  { return s.vol }
func (s *Surfaces) GeomCenter() r3.Vec               { return s.tc }
func (s *Surfaces) String() string                   { return describe("Surfaces", s.NumPanels(), s.cat, s.mov) }

// NumBCs returns the number of boundary-condition components per panel, or
// zero for non-reactive collections.
func (s *Surfaces) NumBCs() int {
	if s.cat != Reactive {
		return 0
	}
	return s.nval
}

// Triangle returns the corner positions of panel i.
func (s *Surfaces) Triangle(i int) kernels.Triangle {
	t := s.tris[i]
	return kernels.Triangle{s.x[t[0]], s.x[t[1]], s.x[t[2]]}
}

func (s *Surfaces) Centroid(i int) r3.Vec {
	return s.Triangle(i).Centroid()
}

// MaxBC returns the largest boundary-condition magnitude over all components.
func (s *Surfaces) MaxBC() float64 {
	maxBC := 0.0
	for _, v := range s.bc {
		maxBC = math.Max(maxBC, math.Abs(v))
	}
	return maxBC
}

// SetStrengths assigns solved vortex-sheet strengths, two per panel, and
// refreshes the absolute strengths.
func (s *Surfaces) SetStrengths(vals []float64) error {
	if s.cat == Inert {
		return fmt.Errorf("%w: inert panels carry no strength", ErrMalformedInput)
	}
	if len(vals) != 2*s.NumPanels() {
		return fmt.Errorf("%w: need %d strengths for %d panels, got %d",
			ErrMalformedInput, 2*s.NumPanels(), s.NumPanels(), len(vals))
	}
	for i := range s.vs {
		s.vs[i] = [2]float64{vals[2*i], vals[2*i+1]}
	}
	s.refreshStrengths()
	return nil
}

func (s *Surfaces) ZeroStrengths() {
	clear(s.vs)
	if src, ok := s.ss.Get(); ok {
		clear(src)
	}
	s.refreshStrengths()
}

// refreshStrengths converts vortex-sheet strengths into absolute panel
// strengths: (vs0·t1 + vs1·t2)·area.
func (s *Surfaces) refreshStrengths() {
	if s.cat == Inert {
		return
	}
	n := len(s.vs)
	if cap(s.ps) < n {
		s.ps = make([]r3.Vec, n)
	}
	s.ps = s.ps[:n]
	for i := 0; i < n; i++ {
		sheet := r3.Add(r3.Scale(s.vs[i][0], s.t1[i]), r3.Scale(s.vs[i][1], s.t2[i]))
		s.ps[i] = r3.Scale(s.area[i], sheet)
	}
}

func (s *Surfaces) ZeroVels() {
	clear(s.pu)
}

// FinalizeVels turns raw kernel sums at panel centroids into velocities:
// each is scaled by 1/(4π) and the freestream fs is added.
func (s *Surfaces) FinalizeVels(fs r3.Vec) {
	const factor = 0.25 / math.Pi
	for i := range s.pu {
		s.pu[i] = r3.Add(fs, r3.Scale(factor, s.pu[i]))
	}
}

// Move advances the collection from time t by dt. Body-bound panels follow
// their body; panels are never advected by the flow.
func (s *Surfaces) Move(t, dt float64) {
	if s.mov == BodyBound {
		s.Transform(t + dt)
	}
}
