package bem

import (
	"github.com/san-kum/vortex/internal/elements"
	"gonum.org/v1/gonum/spatial/r3"
)

// RHS returns the right-hand side for a reactive panel collection whose
// velocities have been accumulated and finalized. Depending on the number of
// boundary conditions per panel the velocity is projected onto the normal
// (1), both tangents (2) or both tangents then the normal (3); each projection
// is negated and the panel's boundary-condition value is subtracted.
//
// Active and inert collections, and collections without panels, have no
// right-hand side.
func RHS(s *elements.Surfaces) []float64 {
	if s.Category() != elements.Reactive || s.NumPanels() == 0 {
		return nil
	}

	t1, t2, norm := s.Tangent1(), s.Tangent2(), s.Normals()
	bc := s.BCs()
	rhs := make([]float64, 0, s.NumRows())

	for i, u := range s.Vels() {
		switch s.NumBCs() {
		case 1:
			rhs = append(rhs, -r3.Dot(u, norm[i]))
		case 2:
			rhs = append(rhs, -r3.Dot(u, t1[i]), -r3.Dot(u, t2[i]))
		case 3:
			rhs = append(rhs, -r3.Dot(u, t1[i]), -r3.Dot(u, t2[i]), -r3.Dot(u, norm[i]))
		}
	}
	for i := range bc {
		rhs[i] -= bc[i]
	}

	if s.IsAugmented() {
		circ := s.BodyCirculation(0)
		rhs = append(rhs, circ.X, circ.Y, circ.Z)
	}
	return rhs
}
