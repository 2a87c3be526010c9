package tui

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orbiting perspective view of a point in the flow.
type Camera struct {
	Target   r3.Vec
	Yaw      float64
	Pitch    float64
	Distance float64
	Zoom     float64
}

func NewCamera() *Camera {
	return &Camera{Pitch: -0.4, Yaw: 0.6, Distance: 12, Zoom: 1}
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(20, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

// view rotates p about the target into camera axes: x right, y up, z toward
// the viewer.
func (c *Camera) view(p r3.Vec) r3.Vec {
	q := r3.Sub(p, c.Target)
	q = r3.NewRotation(-c.Yaw, r3.Vec{Z: 1}).Rotate(q)
	// world z is up; the camera looks along -y before pitching
	q = r3.Vec{X: q.X, Y: q.Z, Z: -q.Y}
	return r3.NewRotation(-c.Pitch, r3.Vec{X: 1}).Rotate(q)
}

// Project maps p to dot coordinates on a w x h canvas. It reports false for
// points behind the camera or off the canvas.
func (c *Camera) Project(p r3.Vec, w, h int) (int, int, bool) {
	q := c.view(p)
	depth := c.Distance - q.Z
	if depth <= 1e-3 {
		return 0, 0, false
	}
	scale := c.Zoom * c.Distance / depth * float64(min(w, h)) / 6
	x := int(math.Round(q.X*scale)) + w/2
	y := int(math.Round(-q.Y*scale)) + h/2
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}
