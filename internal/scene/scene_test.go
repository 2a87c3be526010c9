package scene

import (
	"math"
	"testing"

	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/config"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func surfaces(t *testing.T, m Mesh) *elements.Surfaces {
	t.Helper()
	s, err := elements.NewSurfaces(m.X, m.Idx, nil, elements.Inert, elements.BodyBound, elements.NewBody("b"))
	require.NoError(t, err)
	return s
}

func TestOvoid(t *testing.T) {
	for refine := 0; refine <= 3; refine++ {
		m := Ovoid(r3.Vec{X: 2, Y: 2, Z: 2}, refine)
		assert.Equal(t, 20*int(math.Pow(4, float64(refine))), m.NumPanels())
		// closed triangulation: V - E + F = 2 with E = 3F/2
		assert.Equal(t, 2+m.NumPanels()/2, m.NumNodes())

		s := surfaces(t, m)
		for i := 0; i < s.NumPanels(); i++ {
			assert.Greater(t, r3.Dot(s.Normals()[i], s.Centroid(i)), 0.0, "panel %d faces inward", i)
		}
	}

	s := surfaces(t, Ovoid(r3.Vec{X: 2, Y: 2, Z: 2}, 3))
	assert.InDelta(t, 4.0/3.0*math.Pi, s.Volume(), 0.05)
	assert.InDelta(t, 0.0, r3.Norm(s.GeomCenter()), 1e-9)
}

func TestOvoidScale(t *testing.T) {
	m := Ovoid(r3.Vec{X: 4, Y: 2, Z: 1}, 1)
	for i := 0; i < m.NumNodes(); i++ {
		p := m.node(i)
		r := p.X*p.X/4 + p.Y*p.Y + p.Z*p.Z/0.25
		assert.InDelta(t, 1.0, r, 1e-12)
	}
}

func TestRectSolid(t *testing.T) {
	s := surfaces(t, RectSolid(r3.Vec{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, 12, s.NumPanels())
	assert.InDelta(t, 6.0, s.Volume(), 1e-12)

	area := 0.0
	for _, a := range s.Areas() {
		area += a
	}
	assert.InDelta(t, 2*(2+3+6), area, 1e-12)
}

func TestQuad(t *testing.T) {
	m := Quad(r3.Vec{X: 2, Y: 4, Z: 9})
	s := surfaces(t, m)
	assert.Equal(t, 2, s.NumPanels())
	for i, n := range s.Normals() {
		assert.InDelta(t, 1.0, n.Z, 1e-12, "panel %d", i)
	}
	assert.InDelta(t, 8.0, s.Areas()[0]+s.Areas()[1], 1e-12)
	assert.Equal(t, 0.0, s.Volume())
}

func TestRing(t *testing.T) {
	center := r3.Vec{X: 1, Y: -1, Z: 2}
	normal := r3.Vec{X: 1, Z: 1}
	packed := Ring(center, normal, 0.5, 2, 40)
	require.Len(t, packed, 7*40)

	p, err := elements.NewPointsPacked(packed, elements.Active, elements.Lagrangian, nil)
	require.NoError(t, err)

	axis := r3.Unit(normal)
	for _, x := range p.Positions() {
		d := r3.Sub(x, center)
		assert.InDelta(t, 0.5, r3.Norm(d), 1e-12)
		assert.InDelta(t, 0.0, r3.Dot(d, axis), 1e-12)
	}

	assert.InDelta(t, 0.0, r3.Norm(p.TotalCirculation()), 1e-12)

	// Σ s×x about the centre is -Γ·2πR²·axis for a ring turning about axis
	var imp r3.Vec
	s, _ := p.Strengths().Get()
	for i, x := range p.Positions() {
		imp = r3.Add(imp, r3.Cross(s[i], r3.Sub(x, center)))
	}
	want := r3.Scale(-2*2*math.Pi*0.25, axis)
	assert.InDelta(t, want.X, imp.X, 1e-9)
	assert.InDelta(t, want.Y, imp.Y, 1e-9)
	assert.InDelta(t, want.Z, imp.Z, 1e-9)
}

func TestTracerLine(t *testing.T) {
	x := TracerLine(r3.Vec{}, r3.Vec{X: 1, Y: 2}, 3)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.5, 1, 0, 1, 2, 0}, x, 1e-15)
	assert.Equal(t, []float64{4, 5, 6}, TracerLine(r3.Vec{X: 4, Y: 5, Z: 6}, r3.Vec{}, 1))
	assert.Nil(t, TracerLine(r3.Vec{}, r3.Vec{}, 0))
}

func TestNewFromPresets(t *testing.T) {
	for _, cat := range config.Categories() {
		for _, name := range config.ListPresets(cat) {
			t.Run(cat+"/"+name, func(t *testing.T) {
				cfg := config.GetPreset(cat, name)
				s, err := New(cfg, sim.WithBackend(compute.NewSerialBackend()))
				require.NoError(t, err)

				particles := 0
				for _, f := range cfg.Flow {
					if f.Type == "ring" {
						particles += f.N
					} else {
						particles++
					}
				}
				assert.Equal(t, particles, s.NumParticles())
				assert.Len(t, s.Boundaries(), len(cfg.Bodies))
			})
		}
	}
}

func TestBodySurfacesPlacement(t *testing.T) {
	s, err := sim.New(sim.DefaultParams())
	require.NoError(t, err)

	surf, err := BodySurfaces(config.BodyConfig{Name: "box", Shape: "rect", Center: config.Vec{5, 0, 0}, Scale: config.Vec{1, 1, 1}, BCs: 3})
	require.NoError(t, err)
	require.NoError(t, s.AddBoundary(surf))

	assert.Equal(t, 3, surf.NumBCs())
	c := surf.GeomCenter()
	assert.InDelta(t, 5.0, c.X, 1e-12)
	for _, x := range surf.Positions() {
		assert.InDelta(t, 5.0, x.X, 0.5+1e-12)
	}

	_, err = BodySurfaces(config.BodyConfig{Shape: "torus"})
	assert.Error(t, err)
}

func TestParamsUsesIPS(t *testing.T) {
	p := Params(config.SimConfig{Re: 1, Dt: 0.01, IPS: 0.02, Freestream: config.Vec{1, 2, 3}})
	assert.InDelta(t, 0.02, p.IPS(), 1e-12)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, p.Freestream)
}
