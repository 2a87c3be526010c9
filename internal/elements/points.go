package elements

import (
	"fmt"
	"math"

	"github.com/san-kum/vortex/internal/kernels"
	"gonum.org/v1/gonum/spatial/r3"
)

// PackedStride is the number of values per particle in the packed form:
// x, y, z, sx, sy, sz, radius.
const PackedStride = 7

// Points is a collection of free particles: vortex blobs, tracers or field
// points.
type Points struct {
	nodes
	r     []float64
	s     Optional[[]r3.Vec]
	u     []r3.Vec
	ug    Optional[[]kernels.Grad]
	elong []float64

	maxStrength float64
}

// NewPoints builds a particle collection from a stride-3 position array and a
// value array. Active particles take 4 values each (sx, sy, sz, radius);
// reactive and inert particles take 1 value each (radius) or none, in which
// case every radius is zero.
func NewPoints(x, val []float64, cat Category, mov Movement, body *Body) (*Points, error) {
	p := &Points{
		nodes:       newNodes(cat, mov, body),
		maxStrength: -1,
	}
	if cat != Inert {
		p.s = Some([]r3.Vec{})
	}
	if cat == Active && mov == Lagrangian {
		p.ug = Some([]kernels.Grad{})
	}
	if err := p.Add(x, val); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPointsPacked builds a particle collection from the stride-7 packed form.
func NewPointsPacked(packed []float64, cat Category, mov Movement, body *Body) (*Points, error) {
	x, val, err := splitPacked(packed, cat)
	if err != nil {
		return nil, err
	}
	return NewPoints(x, val, cat, mov, body)
}

// AddPacked appends particles given in the stride-7 packed form.
func (p *Points) AddPacked(packed []float64) error {
	x, val, err := splitPacked(packed, p.cat)
	if err != nil {
		return err
	}
	return p.Add(x, val)
}

func splitPacked(packed []float64, cat Category) ([]float64, []float64, error) {
	if len(packed)%PackedStride != 0 {
		return nil, nil, fmt.Errorf("%w: packed particle array length %d is not a multiple of %d",
			ErrMalformedInput, len(packed), PackedStride)
	}
	n := len(packed) / PackedStride
	x := make([]float64, 0, 3*n)
	var val []float64
	for i := 0; i < n; i++ {
		rec := packed[PackedStride*i : PackedStride*(i+1)]
		x = append(x, rec[0:3]...)
		if cat == Active {
			val = append(val, rec[3:7]...)
		} else {
			val = append(val, rec[6])
		}
	}
	return x, val, nil
}

// Add appends particles, validating the arrays the same way NewPoints does.
func (p *Points) Add(x, val []float64) error {
	pos, err := unpackVecs(x, "position")
	if err != nil {
		return err
	}
	n := len(pos)

	stride := 1
	if p.cat == Active {
		stride = 4
	}
	switch {
	case len(val) == stride*n:
	case p.cat != Active && len(val) == 0:
	default:
		return fmt.Errorf("%w: %s particles need %d values each, got %d values for %d particles",
			ErrMalformedInput, p.cat, stride, len(val), n)
	}

	p.appendNodes(pos)
	for i := 0; i < n; i++ {
		radius := 0.0
		if len(val) > 0 {
			radius = val[stride*i+stride-1]
		}
		p.r = append(p.r, radius)
		p.elong = append(p.elong, 1.0)
	}
	p.u = append(p.u, make([]r3.Vec, n)...)

	if s, ok := p.s.Get(); ok {
		for i := 0; i < n; i++ {
			var str r3.Vec
			if p.cat == Active {
				str = r3.Vec{X: val[4*i], Y: val[4*i+1], Z: val[4*i+2]}
			}
			s = append(s, str)
		}
		p.s = Some(s)
	}
	if ug, ok := p.ug.Get(); ok {
		p.ug = Some(append(ug, make([]kernels.Grad, n)...))
	}
	return nil
}

func (p *Points) N() int                             { return len(p.x) }
func (p *Points) Radii() []float64                   { return p.r }
func (p *Points) Strengths() Optional[[]r3.Vec]      { return p.s }
func (p *Points) Vels() []r3.Vec                     { return p.u }
func (p *Points) VelGrads() Optional[[]kernels.Grad] { return p.ug }
func (p *Points) Elongation() []float64              { return p.elong }
func (p *Points) String() string                     { return describe("Points", p.N(), p.cat, p.mov) }

// SetRadii overwrites every core radius.
func (p *Points) SetRadii(r float64) {
	for i := range p.r {
		p.r[i] = r
	}
}

func (p *Points) ZeroVels() {
	clear(p.u)
	if ug, ok := p.ug.Get(); ok {
		clear(ug)
	}
}

// FinalizeVels turns raw kernel sums into velocities: each is scaled by
// 1/(4π) and the freestream fs is added. Gradients are scaled as well.
func (p *Points) FinalizeVels(fs r3.Vec) {
	const factor = 0.25 / math.Pi
	for i := range p.u {
		p.u[i] = r3.Add(fs, r3.Scale(factor, p.u[i]))
	}
	if ug, ok := p.ug.Get(); ok {
		for i := range ug {
			ug[i] = ug[i].Scale(factor)
		}
	}
}

// Transform moves body-bound particles to their positions at time t.
func (p *Points) Transform(t float64) {
	p.transformNodes(t)
}

// Move advances the collection from time t by dt with first-order Euler.
// Lagrangian particles advect with their velocity and, when gradients are
// present, stretch their strengths by (s·∇)u.
func (p *Points) Move(t, dt float64) {
	switch p.mov {
	case Lagrangian:
		for i := range p.x {
			p.x[i] = r3.Add(p.x[i], r3.Scale(dt, p.u[i]))
		}
		p.stretch(dt)
	case BodyBound:
		p.Transform(t + dt)
	case Fixed:
	}
}

func (p *Points) stretch(dt float64) {
	s, ok := p.s.Get()
	if !ok || p.cat != Active {
		return
	}
	ug, ok := p.ug.Get()
	if !ok {
		return
	}

	thismax := 0.0
	for i := range s {
		g := ug[i]
		wdu := r3.Add(r3.Add(
			r3.Scale(s[i].X, g.Column(0)),
			r3.Scale(s[i].Y, g.Column(1))),
			r3.Scale(s[i].Z, g.Column(2)))

		before := r3.Norm(s[i])
		s[i] = r3.Add(s[i], r3.Scale(dt, wdu))
		after := r3.Norm(s[i])
		if before > 0 {
			p.elong[i] *= after / before
		}
		thismax = math.Max(thismax, after)
	}
	p.updateMaxStrength(thismax)
}

func (p *Points) updateMaxStrength(thismax float64) {
	if p.maxStrength < 0 {
		p.maxStrength = thismax
	} else {
		p.maxStrength = 0.1*thismax + 0.9*p.maxStrength
	}
}

// MaxStrength returns the running estimate of the peak strength magnitude.
func (p *Points) MaxStrength() float64 {
	if p.maxStrength < 0 {
		s, _ := p.s.Get()
		for _, v := range s {
			p.maxStrength = math.Max(p.maxStrength, r3.Norm(v))
		}
		p.maxStrength = math.Max(p.maxStrength, 0)
	}
	return p.maxStrength
}

func (p *Points) TotalCirculation() r3.Vec {
	var circ r3.Vec
	if p.cat == Inert {
		return circ
	}
	s, _ := p.s.Get()
	for _, v := range s {
		circ = r3.Add(circ, v)
	}
	return circ
}

func (p *Points) TotalImpulse() r3.Vec {
	var imp r3.Vec
	if p.cat == Inert {
		return imp
	}
	s, _ := p.s.Get()
	for i, v := range s {
		imp = r3.Add(imp, r3.Cross(v, p.x[i]))
	}
	return imp
}

func describe(shape string, n int, cat Category, mov Movement) string {
	return fmt.Sprintf("%s: %d %s %s", shape, n, cat, mov)
}
