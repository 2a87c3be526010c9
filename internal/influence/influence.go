// Package influence pairs source and target element collections and
// accumulates the raw velocity each source induces on each target.
//
// The match over the two collection shapes is closed: every function here
// switches on both kinds, and a new shape has to be added to each switch.
package influence

import (
	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/kernels"
	"gonum.org/v1/gonum/spatial/r3"
)

// Accumulate adds the raw (unnormalized) velocity induced by src onto the
// velocity buffers of targ. Targets that carry velocity gradients get those
// accumulated as well. Inert sources induce nothing.
//
// Targets are split across the backend's workers; each target sums over the
// sources in index order.
func Accumulate(src, targ elements.Collection, be compute.Backend) {
	if src.Category() == elements.Inert {
		return
	}
	if be == nil {
		be = compute.GetBackend()
	}

	switch src.Kind() {
	case elements.PointsKind:
		sp, _ := src.Points()
		switch targ.Kind() {
		case elements.PointsKind:
			tp, _ := targ.Points()
			pointsOnPoints(sp, tp, be)
		case elements.SurfacesKind:
			ts, _ := targ.Surfaces()
			pointsOnSurfaces(sp, ts, be)
		}
	case elements.SurfacesKind:
		ss, _ := src.Surfaces()
		switch targ.Kind() {
		case elements.PointsKind:
			tp, _ := targ.Points()
			surfacesOnPoints(ss, tp, be)
		case elements.SurfacesKind:
			ts, _ := targ.Surfaces()
			surfacesOnSurfaces(ss, ts, be)
		}
	}
}

// AccumulateAll runs Accumulate for every source onto every target.
func AccumulateAll(srcs, targs []elements.Collection, be compute.Backend) {
	for _, targ := range targs {
		for _, src := range srcs {
			Accumulate(src, targ, be)
		}
	}
}

func pointsOnPoints(src, targ *elements.Points, be compute.Backend) {
	str, ok := src.Strengths().Get()
	if !ok {
		return
	}
	sx := src.Positions()
	sr := src.Radii()
	tx := targ.Positions()
	tr := targ.Radii()
	tu := targ.Vels()

	if ug, ok := targ.VelGrads().Get(); ok {
		be.ParallelFor(len(tx), func(start, end int) {
			for i := start; i < end; i++ {
				vel, grad := tu[i], ug[i]
				for j := range sx {
					dv, dg := kernels.VortexBlobGrad(sx[j], sr[j], str[j], tx[i], tr[i])
					vel = r3.Add(vel, dv)
					grad = grad.Add(dg)
				}
				tu[i], ug[i] = vel, grad
			}
		})
		return
	}

	be.ParallelFor(len(tx), func(start, end int) {
		for i := start; i < end; i++ {
			vel := tu[i]
			for j := range sx {
				vel = r3.Add(vel, kernels.VortexBlob(sx[j], sr[j], str[j], tx[i], tr[i]))
			}
			tu[i] = vel
		}
	})
}

// pointsOnSurfaces evaluates at panel centroids as singular targets.
func pointsOnSurfaces(src *elements.Points, targ *elements.Surfaces, be compute.Backend) {
	str, ok := src.Strengths().Get()
	if !ok {
		return
	}
	sx := src.Positions()
	sr := src.Radii()
	tu := targ.Vels()

	be.ParallelFor(targ.NumPanels(), func(start, end int) {
		for i := start; i < end; i++ {
			c := targ.Centroid(i)
			vel := tu[i]
			for j := range sx {
				vel = r3.Add(vel, kernels.VortexPoint(sx[j], sr[j], str[j], c))
			}
			tu[i] = vel
		}
	})
}

func surfacesOnPoints(src *elements.Surfaces, targ *elements.Points, be compute.Backend) {
	str := src.Strengths()
	area := src.Areas()
	srcSheet, hasSrc := src.SourceSheet().Get()
	tris := make([]kernels.Triangle, src.NumPanels())
	for j := range tris {
		tris[j] = src.Triangle(j)
	}

	tx := targ.Positions()
	tr := targ.Radii()
	tu := targ.Vels()
	ug, hasGrad := targ.VelGrads().Get()

	be.ParallelFor(len(tx), func(start, end int) {
		for i := start; i < end; i++ {
			vel := tu[i]
			var grad kernels.Grad
			if hasGrad {
				grad = ug[i]
			}
			for j, tri := range tris {
				if hasGrad {
					dv, dg := kernels.PanelVortexBlobGrad(tri, str[j], tx[i], tr[i])
					vel = r3.Add(vel, dv)
					grad = grad.Add(dg)
				} else {
					vel = r3.Add(vel, kernels.PanelVortexBlob(tri, str[j], tx[i], tr[i]))
				}
				if hasSrc {
					vel = r3.Add(vel, kernels.PanelSourcePoint(tri, srcSheet[j]*area[j], tx[i]))
				}
			}
			tu[i] = vel
			if hasGrad {
				ug[i] = grad
			}
		}
	})
}

// surfacesOnSurfaces evaluates at panel centroids. When a collection acts on
// itself, a panel's influence on its own centroid uses the one-sided self
// kernels.
func surfacesOnSurfaces(src, targ *elements.Surfaces, be compute.Backend) {
	same := src == targ
	str := src.Strengths()
	area := src.Areas()
	norm := src.Normals()
	srcSheet, hasSrc := src.SourceSheet().Get()
	tris := make([]kernels.Triangle, src.NumPanels())
	for j := range tris {
		tris[j] = src.Triangle(j)
	}
	tu := targ.Vels()

	be.ParallelFor(targ.NumPanels(), func(start, end int) {
		for i := start; i < end; i++ {
			c := targ.Centroid(i)
			vel := tu[i]
			for j, tri := range tris {
				if same && i == j {
					vel = r3.Add(vel, kernels.PanelVortexSelf(tri, str[j], area[j], norm[j]))
					if hasSrc {
						vel = r3.Add(vel, kernels.PanelSourceSelf(tri, srcSheet[j]*area[j], area[j], norm[j]))
					}
					continue
				}
				vel = r3.Add(vel, kernels.PanelVortexPoint(tri, str[j], c))
				if hasSrc {
					vel = r3.Add(vel, kernels.PanelSourcePoint(tri, srcSheet[j]*area[j], c))
				}
			}
			tu[i] = vel
		}
	})
}

// PanelInfluence returns the raw velocity that panel j of src, carrying total
// strength str, induces at the centroid of panel i of targ.
func PanelInfluence(src *elements.Surfaces, j int, str r3.Vec, targ *elements.Surfaces, i int) r3.Vec {
	tri := src.Triangle(j)
	if src == targ && i == j {
		return kernels.PanelVortexSelf(tri, str, src.Areas()[j], src.Normals()[j])
	}
	return kernels.PanelVortexPoint(tri, str, targ.Centroid(i))
}
