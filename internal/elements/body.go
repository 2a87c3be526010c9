package elements

import "gonum.org/v1/gonum/spatial/r3"

// GroundName is the name of the body that never moves.
const GroundName = "ground"

// Body is a rigid body that panels and particles may be attached to. Its
// motion is a constant translation plus a constant rotation rate about its
// reference position.
type Body struct {
	Name   string
	Pos    r3.Vec
	Vel    r3.Vec
	RotVel r3.Vec
}

func NewBody(name string) *Body {
	return &Body{Name: name}
}

// Ground returns the fixed reference body.
func Ground() *Body {
	return &Body{Name: GroundName}
}

func (b *Body) IsGround() bool { return b.Name == GroundName }

func (b *Body) Position(t float64) r3.Vec {
	return r3.Add(b.Pos, r3.Scale(t, b.Vel))
}

func (b *Body) Velocity(t float64) r3.Vec { return b.Vel }

func (b *Body) AngularVelocity(t float64) r3.Vec { return b.RotVel }

// Rotation returns the orientation of the body at time t.
func (b *Body) Rotation(t float64) r3.Rotation {
	angle := r3.Norm(b.RotVel) * t
	if angle == 0 {
		return r3.NewRotation(0, r3.Vec{Z: 1})
	}
	return r3.NewRotation(angle, r3.Unit(b.RotVel))
}

// Transform maps a point given in body coordinates to world coordinates at
// time t.
func (b *Body) Transform(p r3.Vec, t float64) r3.Vec {
	if b.IsGround() {
		return p
	}
	return r3.Add(b.Position(t), b.Rotation(t).Rotate(p))
}
