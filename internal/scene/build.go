// Package scene turns a scene description into element collections and adds
// them to a simulation.
package scene

import (
	"fmt"

	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/config"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(v config.Vec) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// Params converts the simulation section of a scene into stepper parameters.
func Params(c config.SimConfig) sim.Params {
	p := sim.Params{Re: c.Re, Dt: c.Dt, Freestream: vec(c.Freestream)}
	if c.IPS > 0 {
		p = p.WithReForIPS(c.IPS)
	}
	return p
}

// New builds a simulation for cfg. A backend named in the scene is used
// unless opts choose one.
func New(cfg *config.Config, opts ...sim.Option) (*sim.Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Sim.Backend != "" {
		be, ok := compute.ByName(cfg.Sim.Backend)
		if !ok {
			return nil, fmt.Errorf("unknown backend %q", cfg.Sim.Backend)
		}
		opts = append([]sim.Option{sim.WithBackend(be)}, opts...)
	}

	s, err := sim.New(Params(cfg.Sim), opts...)
	if err != nil {
		return nil, err
	}
	if err := Populate(cfg, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Populate adds the flow, bodies and measurement points of cfg to s.
func Populate(cfg *config.Config, s *sim.Simulation) error {
	for i, f := range cfg.Flow {
		var packed []float64
		switch f.Type {
		case "ring":
			packed = Ring(vec(f.Center), vec(f.Normal), f.Radius, f.Circulation, f.N)
		case "blob":
			packed = Blob(vec(f.Center), vec(f.Strength))
		default:
			return fmt.Errorf("flow %d: unknown type %q", i, f.Type)
		}
		if err := s.AddParticles(packed); err != nil {
			return fmt.Errorf("flow %d: %w", i, err)
		}
	}

	for i, b := range cfg.Bodies {
		surf, err := BodySurfaces(b)
		if err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		if err := s.AddBoundary(surf); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}

	for i, m := range cfg.Measure {
		pts, err := elements.NewPoints(TracerLine(vec(m.Start), vec(m.End), m.N), nil, elements.Inert, elements.Lagrangian, nil)
		if err != nil {
			return fmt.Errorf("measure %d: %w", i, err)
		}
		if err := s.AddFieldPoints(pts); err != nil {
			return fmt.Errorf("measure %d: %w", i, err)
		}
	}
	return nil
}

// BodySurfaces meshes a body as reactive panels bound to it. The mesh is
// built in body coordinates and placed by the body's position.
func BodySurfaces(b config.BodyConfig) (*elements.Surfaces, error) {
	var m Mesh
	scale := vec(b.Scale)
	switch b.Shape {
	case "ovoid":
		refine := b.Refine
		if refine <= 0 {
			refine = config.DefaultRefine
		}
		m = Ovoid(scale, refine)
	case "rect":
		m = RectSolid(scale)
	case "quad":
		m = Quad(scale)
	default:
		return nil, fmt.Errorf("unknown shape %q", b.Shape)
	}

	body := elements.NewBody(b.Name)
	body.Pos = vec(b.Center)
	body.Vel = vec(b.Vel)
	body.RotVel = vec(b.RotVel)

	nbc := b.BCs
	if nbc == 0 {
		nbc = 2
	}
	bc := make([]float64, nbc*m.NumPanels())
	return elements.NewSurfaces(m.X, m.Idx, bc, elements.Reactive, elements.BodyBound, body)
}
