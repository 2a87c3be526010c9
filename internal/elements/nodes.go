package elements

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// nodes is the substrate shared by every collection: node positions, an
// optional copy in body coordinates, and the collection's category.
type nodes struct {
	x    []r3.Vec
	ux   Optional[[]r3.Vec]
	cat  Category
	mov  Movement
	body *Body
}

func newNodes(cat Category, mov Movement, body *Body) nodes {
	n := nodes{cat: cat, mov: mov, body: body}
	if body != nil {
		n.ux = Some([]r3.Vec{})
	}
	return n
}

func (n *nodes) Category() Category  { return n.cat }
func (n *nodes) Movement() Movement  { return n.mov }
func (n *nodes) Body() *Body         { return n.body }
func (n *nodes) NumNodes() int       { return len(n.x) }
func (n *nodes) Positions() []r3.Vec { return n.x }

// Untransformed returns node positions in body coordinates, when the
// collection has a parent body.
func (n *nodes) Untransformed() Optional[[]r3.Vec] { return n.ux }

// appendNodes unpacks a stride-3 position array onto the node list and, for
// body-attached collections, onto the untransformed list as well.
func (n *nodes) appendNodes(pos []r3.Vec) {
	n.x = append(n.x, pos...)
	if ux, ok := n.ux.Get(); ok {
		n.ux = Some(append(ux, pos...))
	}
}

// transformNodes moves body-bound nodes to their world positions at time t.
func (n *nodes) transformNodes(t float64) {
	if n.mov != BodyBound || n.body == nil {
		return
	}
	ux, ok := n.ux.Get()
	if !ok {
		return
	}
	for i := range ux {
		n.x[i] = n.body.Transform(ux[i], t)
	}
}

func unpackVecs(flat []float64, what string) ([]r3.Vec, error) {
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("%w: %s array length %d is not a multiple of 3", ErrMalformedInput, what, len(flat))
	}
	out := make([]r3.Vec, len(flat)/3)
	for i := range out {
		out[i] = r3.Vec{X: flat[3*i], Y: flat[3*i+1], Z: flat[3*i+2]}
	}
	return out, nil
}
