package bem

import "errors"

// ErrSingular is returned when the panel-strength system has no usable
// solution.
var ErrSingular = errors.New("bem: panel system could not be solved")
