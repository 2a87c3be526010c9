package kernels

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a flat panel given by its three corner positions.
type Triangle [3]r3.Vec

// Centroid returns the mean of the three corners.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// QuadraturePoints returns the centroid followed by the three points
// (4·v_i + v_j + v_k)/6 weighted toward each corner.
func (t Triangle) QuadraturePoints() [4]r3.Vec {
	corner := func(i, j, k int) r3.Vec {
		return r3.Scale(1.0/6.0, r3.Add(r3.Add(r3.Scale(4, t[i]), t[j]), t[k]))
	}
	return [4]r3.Vec{
		t.Centroid(),
		corner(0, 1, 2),
		corner(1, 2, 0),
		corner(2, 0, 1),
	}
}

// PanelVortexPoint is the influence of a constant-strength vortex panel with
// total strength str on a singular target point. Each of the four quadrature
// points carries a quarter of the strength.
func PanelVortexPoint(tri Triangle, str r3.Vec, targ r3.Vec) r3.Vec {
	q := r3.Scale(0.25, str)
	var vel r3.Vec
	for _, p := range tri.QuadraturePoints() {
		vel = r3.Add(vel, VortexPoint(p, 0, q, targ))
	}
	return vel
}

// PanelVortexBlob is PanelVortexPoint on a thick-cored target.
func PanelVortexBlob(tri Triangle, str r3.Vec, targ r3.Vec, tr float64) r3.Vec {
	q := r3.Scale(0.25, str)
	var vel r3.Vec
	for _, p := range tri.QuadraturePoints() {
		vel = r3.Add(vel, VortexBlob(p, 0, q, targ, tr))
	}
	return vel
}

// PanelSourcePoint is the influence of a constant-strength source panel with
// total strength ss on a singular target point.
func PanelSourcePoint(tri Triangle, ss float64, targ r3.Vec) r3.Vec {
	q := 0.25 * ss
	var vel r3.Vec
	for _, p := range tri.QuadraturePoints() {
		vel = r3.Add(vel, SourcePoint(p, 0, q, targ))
	}
	return vel
}

// PanelVortexBlobGrad is PanelVortexBlob plus the velocity gradient.
func PanelVortexBlobGrad(tri Triangle, str r3.Vec, targ r3.Vec, tr float64) (r3.Vec, Grad) {
	q := r3.Scale(0.25, str)
	var (
		vel r3.Vec
		g   Grad
	)
	for _, p := range tri.QuadraturePoints() {
		dv, dg := VortexBlobGrad(p, 0, q, targ, tr)
		vel = r3.Add(vel, dv)
		g = g.Add(dg)
	}
	return vel, g
}

// PanelVortexPointGrad is PanelVortexPoint plus the velocity gradient.
func PanelVortexPointGrad(tri Triangle, str r3.Vec, targ r3.Vec) (r3.Vec, Grad) {
	return PanelVortexBlobGrad(tri, str, targ, 0)
}

// PanelVortexSelf is the influence of a vortex panel on its own centroid, as
// seen from the fluid side (the side normal points to). The centroid sample of
// the quadrature rule would be singular there; it is replaced by the one-sided
// sheet jump ½·γ×n, with γ = str/area, expressed in raw (4π-scaled) units.
func PanelVortexSelf(tri Triangle, str r3.Vec, area float64, normal r3.Vec) r3.Vec {
	q := r3.Scale(0.25, str)
	targ := tri.Centroid()
	pts := tri.QuadraturePoints()

	var vel r3.Vec
	for _, p := range pts[1:] {
		vel = r3.Add(vel, VortexPoint(p, 0, q, targ))
	}
	jump := r3.Scale(2*math.Pi/area, r3.Cross(str, normal))
	return r3.Add(vel, jump)
}

// PanelSourceSelf is the source counterpart of PanelVortexSelf: the centroid
// sample is replaced by the one-sided normal jump ½·σ·n with σ = ss/area.
func PanelSourceSelf(tri Triangle, ss float64, area float64, normal r3.Vec) r3.Vec {
	q := 0.25 * ss
	targ := tri.Centroid()
	pts := tri.QuadraturePoints()

	var vel r3.Vec
	for _, p := range pts[1:] {
		vel = r3.Add(vel, SourcePoint(p, 0, q, targ))
	}
	return r3.Add(vel, r3.Scale(2*math.Pi*ss/area, normal))
}
