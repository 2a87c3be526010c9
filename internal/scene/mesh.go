package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangulated surface in the flat form collections are built
// from: stride-3 node positions and three node indices per panel. Panels are
// wound so that (b-a)×(c-a) points into the fluid.
type Mesh struct {
	X   []float64
	Idx []int
}

func (m Mesh) NumNodes() int  { return len(m.X) / 3 }
func (m Mesh) NumPanels() int { return len(m.Idx) / 3 }

func (m Mesh) node(i int) r3.Vec {
	return r3.Vec{X: m.X[3*i], Y: m.X[3*i+1], Z: m.X[3*i+2]}
}

func (m *Mesh) addNode(v r3.Vec) int {
	m.X = append(m.X, v.X, v.Y, v.Z)
	return m.NumNodes() - 1
}

// scaled returns a copy with every node multiplied component-wise by s.
func (m Mesh) scaled(s r3.Vec) Mesh {
	out := Mesh{X: make([]float64, len(m.X)), Idx: append([]int(nil), m.Idx...)}
	for i := 0; i < len(m.X); i += 3 {
		out.X[i] = m.X[i] * s.X
		out.X[i+1] = m.X[i+1] * s.Y
		out.X[i+2] = m.X[i+2] * s.Z
	}
	return out
}

// Ovoid returns an ellipsoid with semi-axes scale/2 centred on the origin,
// built by refining an icosahedron refine times. It has 20·4^refine panels.
func Ovoid(scale r3.Vec, refine int) Mesh {
	phi := (1 + math.Sqrt(5)) / 2
	var m Mesh
	for _, v := range []r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	} {
		m.addNode(r3.Unit(v))
	}
	m.Idx = []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for r := 0; r < refine; r++ {
		m = m.subdivide()
	}
	m.orientOutward(r3.Vec{})
	return m.scaled(r3.Scale(0.5, scale))
}

// subdivide splits every panel into four, pushing new nodes onto the unit
// sphere.
func (m Mesh) subdivide() Mesh {
	out := Mesh{X: append([]float64(nil), m.X...)}
	mid := make(map[[2]int]int)
	midpoint := func(a, b int) int {
		key := [2]int{min(a, b), max(a, b)}
		if i, ok := mid[key]; ok {
			return i
		}
		i := out.addNode(r3.Unit(r3.Add(m.node(a), m.node(b))))
		mid[key] = i
		return i
	}

	for p := 0; p < m.NumPanels(); p++ {
		a, b, c := m.Idx[3*p], m.Idx[3*p+1], m.Idx[3*p+2]
		ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
		out.Idx = append(out.Idx,
			a, ab, ca,
			b, bc, ab,
			c, ca, bc,
			ab, bc, ca)
	}
	return out
}

// orientOutward flips panels whose normal points toward center. Only valid
// for shapes that are star-shaped about center.
func (m Mesh) orientOutward(center r3.Vec) {
	for p := 0; p < m.NumPanels(); p++ {
		a, b, c := m.node(m.Idx[3*p]), m.node(m.Idx[3*p+1]), m.node(m.Idx[3*p+2])
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		cen := r3.Scale(1.0/3.0, r3.Add(r3.Add(a, b), c))
		if r3.Dot(n, r3.Sub(cen, center)) < 0 {
			m.Idx[3*p+1], m.Idx[3*p+2] = m.Idx[3*p+2], m.Idx[3*p+1]
		}
	}
}

// RectSolid returns a box with edge lengths scale centred on the origin.
func RectSolid(scale r3.Vec) Mesh {
	var m Mesh
	for v := 0; v < 8; v++ {
		m.addNode(r3.Vec{
			X: float64(v&1) - 0.5,
			Y: float64((v>>1)&1) - 0.5,
			Z: float64((v>>2)&1) - 0.5,
		})
	}
	m.Idx = []int{
		0, 2, 1, 1, 2, 3,
		4, 5, 6, 5, 7, 6,
		0, 1, 4, 1, 5, 4,
		2, 6, 3, 3, 6, 7,
		0, 4, 2, 2, 4, 6,
		1, 3, 5, 3, 7, 5,
	}
	return m.scaled(scale)
}

// Quad returns a flat rectangle in the xy plane with edge lengths scale.X and
// scale.Y, centred on the origin, with its fluid side toward +z.
func Quad(scale r3.Vec) Mesh {
	m := Mesh{
		X: []float64{
			-0.5, -0.5, 0,
			0.5, -0.5, 0,
			-0.5, 0.5, 0,
			0.5, 0.5, 0,
		},
		Idx: []int{0, 1, 2, 1, 3, 2},
	}
	return m.scaled(r3.Vec{X: scale.X, Y: scale.Y, Z: 1})
}
