package elements

// Category says how an element's strength is determined.
type Category uint8

const (
	// Active elements carry a fixed, known strength.
	Active Category = iota + 1
	// Reactive elements have strengths solved from boundary conditions.
	Reactive
	// Inert elements have no strength and never influence other elements.
	Inert
)

func (c Category) String() string {
	switch c {
	case Active:
		return "active"
	case Reactive:
		return "reactive"
	case Inert:
		return "inert"
	default:
		return "unknown"
	}
}

// Movement says how an element's position changes over time.
type Movement uint8

const (
	// Lagrangian elements move with the local fluid velocity.
	Lagrangian Movement = iota + 1
	// BodyBound elements move rigidly with their parent body.
	BodyBound
	// Fixed elements never move.
	Fixed
)

func (m Movement) String() string {
	switch m {
	case Lagrangian:
		return "lagrangian"
	case BodyBound:
		return "bodybound"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Optional holds a value that may legitimately be absent, such as velocity
// gradients on a collection that never needs them.
type Optional[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }

func (o Optional[T]) Present() bool { return o.ok }

// Value returns the held value, or the zero value when absent.
func (o Optional[T]) Value() T { return o.v }
