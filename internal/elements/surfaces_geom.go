package elements

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// augmentBEM switches on the extra rotational rows for closed moving bodies.
// The row construction is incomplete for 3D panels, so it stays off.
const augmentBEM = false

// ComputeBases computes tangents, normal and area for panels from the current
// watermark up to, but not including, panel upto. Panels below the watermark
// keep their geometry.
func (s *Surfaces) ComputeBases(upto int) {
	upto = min(upto, len(s.tris))
	for i := len(s.area); i < upto; i++ {
		t := s.tris[i]
		x1 := r3.Sub(s.x[t[1]], s.x[t[0]])
		x2 := r3.Sub(s.x[t[2]], s.x[t[0]])

		t1 := r3.Unit(x1)
		perp := r3.Sub(x2, r3.Scale(r3.Dot(x2, t1), t1))
		t2 := r3.Unit(perp)

		s.t1 = append(s.t1, t1)
		s.t2 = append(s.t2, t2)
		s.norm = append(s.norm, r3.Cross(t1, t2))
		s.area = append(s.area, 0.5*r3.Norm(x1)*r3.Norm(perp))
	}
}

// invalidateBases drops the watermark to zero.
func (s *Surfaces) invalidateBases() {
	s.t1 = s.t1[:0]
	s.t2 = s.t2[:0]
	s.norm = s.norm[:0]
	s.area = s.area[:0]
}

// SetGeomCenter computes the enclosed volume and centroid of the reference
// (body frame) mesh by summing signed tetrahedra spanned by the origin and
// each panel. An open mesh encloses no volume; its centre is then the mean of
// the panel centroids.
func (s *Surfaces) SetGeomCenter() error {
	ux, ok := s.ux.Get()
	if !ok || s.body == nil {
		return fmt.Errorf("%w: geometric centre needs a parent body and reference coordinates", ErrPrecondition)
	}
	if len(s.tris) == 0 {
		return fmt.Errorf("%w: geometric centre of an empty mesh", ErrPrecondition)
	}

	var vol float64
	var moment, mean r3.Vec
	for _, t := range s.tris {
		a, b, c := ux[t[0]], ux[t[1]], ux[t[2]]
		tv := r3.Dot(a, r3.Cross(b, c)) / 6.0
		sum := r3.Add(r3.Add(a, b), c)
		vol += tv
		moment = r3.Add(moment, r3.Scale(0.25*tv, sum))
		mean = r3.Add(mean, r3.Scale(1.0/3.0, sum))
	}

	const tiny = 1e-12
	if vol > tiny {
		s.vol = vol
		s.utc = r3.Scale(1/vol, moment)
	} else {
		s.vol = 0
		s.utc = r3.Scale(1/float64(len(s.tris)), mean)
	}
	s.tc = s.utc
	return nil
}

// Transform moves body-bound panels to their positions at time t, recomputes
// every basis and area, and refreshes the absolute strengths.
func (s *Surfaces) Transform(t float64) {
	if s.mov != BodyBound || s.body == nil {
		return
	}
	s.transformNodes(t)
	s.invalidateBases()
	s.ComputeBases(len(s.tris))
	s.refreshStrengths()
	if s.vol >= 0 {
		s.tc = s.body.Transform(s.utc, t)
	}
}

// AddBodyMotion adds factor times the rigid-body velocity at each panel
// centroid to the panel velocities.
func (s *Surfaces) AddBodyMotion(factor, t float64) error {
	if s.mov != BodyBound || s.body == nil || s.body.IsGround() {
		return nil
	}
	if s.vol < 0 {
		return fmt.Errorf("%w: body motion needs the geometric centre", ErrPrecondition)
	}
	vel := s.body.Velocity(t)
	rot := s.body.AngularVelocity(t)
	for i := range s.pu {
		arm := r3.Sub(s.Centroid(i), s.tc)
		v := r3.Add(vel, r3.Cross(rot, arm))
		s.pu[i] = r3.Add(s.pu[i], r3.Scale(factor, v))
	}
	return nil
}

// IsAugmented reports whether the solve carries extra rows for a closed
// rotating body.
func (s *Surfaces) IsAugmented() bool {
	if !augmentBEM || s.cat != Reactive || s.body == nil || s.body.IsGround() {
		return false
	}
	return s.vol > 0 && r3.Norm(s.body.AngularVelocity(0)) > 0
}

// NumRows returns the number of solver rows this collection contributes.
func (s *Surfaces) NumRows() int {
	n := s.NumPanels() * s.NumBCs()
	if s.IsAugmented() {
		n += 3
	}
	return n
}

// NumCols returns the number of solver unknowns, two sheet strengths per
// reactive panel.
func (s *Surfaces) NumCols() int {
	if s.cat != Reactive {
		return 0
	}
	return 2 * s.NumPanels()
}

// RepresentAsParticles returns the panels as packed particles (stride
// PackedStride). Each particle sits at its panel centroid displaced along the
// normal by offset·vdelta, carries the absolute panel strength and has core
// radius vdelta.
func (s *Surfaces) RepresentAsParticles(offset, vdelta float64) []float64 {
	if s.cat == Inert {
		return nil
	}
	out := make([]float64, 0, PackedStride*s.NumPanels())
	for i := range s.tris {
		p := r3.Add(s.Centroid(i), r3.Scale(offset*vdelta, s.norm[i]))
		str := s.ps[i]
		out = append(out, p.X, p.Y, p.Z, str.X, str.Y, str.Z, vdelta)
	}
	return out
}

func (s *Surfaces) TotalCirculation() r3.Vec {
	var circ r3.Vec
	for _, v := range s.ps {
		circ = r3.Add(circ, v)
	}
	return circ
}

func (s *Surfaces) TotalImpulse() r3.Vec {
	var imp r3.Vec
	for i, v := range s.ps {
		imp = r3.Add(imp, r3.Cross(v, s.Centroid(i)))
	}
	return imp
}

// BodyCirculation returns the circulation implied by the rigid rotation of
// the enclosed volume, 2·vol·ω.
func (s *Surfaces) BodyCirculation(t float64) r3.Vec {
	if s.body == nil || s.vol <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(2*s.vol, s.body.AngularVelocity(t))
}
