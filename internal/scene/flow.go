package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ring returns n particles in packed form (x, y, z, sx, sy, sz, r) evenly
// spaced on a circle of the given radius about center, perpendicular to
// normal. The ring carries circulation gamma and, for positive gamma,
// propagates along normal. Radii are left zero.
func Ring(center, normal r3.Vec, radius, gamma float64, n int) []float64 {
	axis := r3.Unit(normal)
	ref := r3.Vec{X: 1}
	if math.Abs(axis.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	e1 := r3.Unit(r3.Cross(axis, ref))
	e2 := r3.Cross(axis, e1)

	ds := 2 * math.Pi * radius / float64(n)
	out := make([]float64, 0, 7*n)
	for i := 0; i < n; i++ {
		th := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(th)
		pos := r3.Add(center, r3.Scale(radius, r3.Add(r3.Scale(cos, e1), r3.Scale(sin, e2))))
		tan := r3.Add(r3.Scale(-sin, e1), r3.Scale(cos, e2))
		str := r3.Scale(gamma*ds, tan)
		out = append(out, pos.X, pos.Y, pos.Z, str.X, str.Y, str.Z, 0)
	}
	return out
}

// Blob returns a single particle in packed form.
func Blob(center, strength r3.Vec) []float64 {
	return []float64{center.X, center.Y, center.Z, strength.X, strength.Y, strength.Z, 0}
}

// TracerLine returns n positions evenly spaced from start to end inclusive.
func TracerLine(start, end r3.Vec, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start.X, start.Y, start.Z}
	}
	out := make([]float64, 0, 3*n)
	step := r3.Scale(1/float64(n-1), r3.Sub(end, start))
	for i := 0; i < n; i++ {
		p := r3.Add(start, r3.Scale(float64(i), step))
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}
