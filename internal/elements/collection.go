package elements

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags the concrete shape held by a Collection.
type Kind int

const (
	PointsKind Kind = iota
	SurfacesKind
)

func (k Kind) String() string {
	switch k {
	case PointsKind:
		return "points"
	case SurfacesKind:
		return "surfaces"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Collection holds exactly one of the two element shapes. Code that needs the
// concrete shape switches on Kind or uses Visit; there is no common method set
// beyond the small helpers below.
type Collection struct {
	kind     Kind
	points   *Points
	surfaces *Surfaces
}

func FromPoints(p *Points) Collection { return Collection{kind: PointsKind, points: p} }

func FromSurfaces(s *Surfaces) Collection { return Collection{kind: SurfacesKind, surfaces: s} }

func (c Collection) Kind() Kind { return c.kind }

// Points returns the particle shape, or nil and false.
func (c Collection) Points() (*Points, bool) { return c.points, c.kind == PointsKind }

// Surfaces returns the panel shape, or nil and false.
func (c Collection) Surfaces() (*Surfaces, bool) { return c.surfaces, c.kind == SurfacesKind }

// Visit calls the function matching the held shape.
func Visit[R any](c Collection, onPoints func(*Points) R, onSurfaces func(*Surfaces) R) R {
	switch c.kind {
	case PointsKind:
		return onPoints(c.points)
	case SurfacesKind:
		return onSurfaces(c.surfaces)
	default:
		panic(fmt.Sprintf("elements: unknown collection kind %d", int(c.kind)))
	}
}

func (c Collection) N() int {
	return Visit(c, (*Points).N, (*Surfaces).NumPanels)
}

func (c Collection) Category() Category {
	return Visit(c,
		func(p *Points) Category { return p.Category() },
		func(s *Surfaces) Category { return s.Category() })
}

func (c Collection) Movement() Movement {
	return Visit(c,
		func(p *Points) Movement { return p.Movement() },
		func(s *Surfaces) Movement { return s.Movement() })
}

func (c Collection) ZeroVels() {
	switch c.kind {
	case PointsKind:
		c.points.ZeroVels()
	case SurfacesKind:
		c.surfaces.ZeroVels()
	}
}

func (c Collection) FinalizeVels(fs r3.Vec) {
	switch c.kind {
	case PointsKind:
		c.points.FinalizeVels(fs)
	case SurfacesKind:
		c.surfaces.FinalizeVels(fs)
	}
}

func (c Collection) Move(t, dt float64) {
	switch c.kind {
	case PointsKind:
		c.points.Move(t, dt)
	case SurfacesKind:
		c.surfaces.Move(t, dt)
	}
}

func (c Collection) TotalCirculation() r3.Vec {
	return Visit(c, (*Points).TotalCirculation, (*Surfaces).TotalCirculation)
}

func (c Collection) TotalImpulse() r3.Vec {
	return Visit(c, (*Points).TotalImpulse, (*Surfaces).TotalImpulse)
}

func (c Collection) String() string {
	return Visit(c, (*Points).String, (*Surfaces).String)
}
