package printify

import "errors"

// ErrProductNotFound is returned when the upstream catalog has no product
// with the requested id.
var ErrProductNotFound = errors.New("product not found in upstream catalog")
