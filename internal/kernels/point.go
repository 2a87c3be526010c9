package kernels

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grad holds a velocity gradient tensor, ordered
// (du/dx, dv/dx, dw/dx, du/dy, dv/dy, dw/dy, du/dz, dv/dz, dw/dz).
type Grad [9]float64

func (g Grad) Add(o Grad) Grad {
	for i := range g {
		g[i] += o[i]
	}
	return g
}

func (g Grad) Scale(f float64) Grad {
	for i := range g {
		g[i] *= f
	}
	return g
}

// Column returns the derivative of velocity along axis d (0=x, 1=y, 2=z).
func (g Grad) Column(d int) r3.Vec {
	return r3.Vec{X: g[3*d], Y: g[3*d+1], Z: g[3*d+2]}
}

// VortexBlob is the influence of a thick-cored vortex particle on a
// thick-cored target point.
func VortexBlob(src r3.Vec, sr float64, str r3.Vec, targ r3.Vec, tr float64) r3.Vec {
	d := r3.Sub(targ, src)
	r2 := r3.Norm2(d) + sr*sr + tr*tr
	r3inv := 1.0 / (r2 * math.Sqrt(r2))
	return r3.Scale(r3inv, r3.Cross(str, d))
}

// VortexPoint is the influence of a thick-cored vortex particle on a singular
// target point.
func VortexPoint(src r3.Vec, sr float64, str r3.Vec, targ r3.Vec) r3.Vec {
	return VortexBlob(src, sr, str, targ, 0)
}

// SourcePoint is the influence of a source particle of scalar strength ss on
// a singular target point.
func SourcePoint(src r3.Vec, sr float64, ss float64, targ r3.Vec) r3.Vec {
	d := r3.Sub(targ, src)
	r2 := r3.Norm2(d) + sr*sr
	return r3.Scale(ss/(r2*math.Sqrt(r2)), d)
}

// VortexBlobGrad is VortexBlob plus the velocity gradient at the target.
func VortexBlobGrad(src r3.Vec, sr float64, str r3.Vec, targ r3.Vec, tr float64) (r3.Vec, Grad) {
	d := r3.Sub(targ, src)
	r2 := r3.Norm2(d) + sr*sr + tr*tr
	rinv3 := 1.0 / (r2 * math.Sqrt(r2))

	sxd := r3.Cross(str, d)
	vel := r3.Scale(rinv3, sxd)

	bbb := -3.0 * rinv3 / r2
	sxd = r3.Scale(bbb, sxd)

	var g Grad
	g[0] = d.X * sxd.X
	g[1] = d.X*sxd.Y + str.Z*rinv3
	g[2] = d.X*sxd.Z - str.Y*rinv3
	g[3] = d.Y*sxd.X - str.Z*rinv3
	g[4] = d.Y * sxd.Y
	g[5] = d.Y*sxd.Z + str.X*rinv3
	g[6] = d.Z*sxd.X + str.Y*rinv3
	g[7] = d.Z*sxd.Y - str.X*rinv3
	g[8] = d.Z * sxd.Z
	return vel, g
}

// VortexPointGrad is VortexPoint plus the velocity gradient at the target.
func VortexPointGrad(src r3.Vec, sr float64, str r3.Vec, targ r3.Vec) (r3.Vec, Grad) {
	return VortexBlobGrad(src, sr, str, targ, 0)
}
