package takeaway

import "errors"

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("takeaway order not found")
