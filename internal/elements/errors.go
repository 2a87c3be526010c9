package elements

import "errors"

// Domain errors for collection construction and geometry queries.
var (
	// ErrMalformedInput indicates a flat input array whose length is not a
	// multiple of the expected stride, or a panel index outside the node list.
	ErrMalformedInput = errors.New("elements: malformed input arrays")

	// ErrPrecondition indicates a geometry query made before the reference
	// data it needs exists (no parent body, no untransformed coordinates,
	// no enclosed volume).
	ErrPrecondition = errors.New("elements: geometry precondition not met")
)
