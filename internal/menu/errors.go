package menu

import "errors"

// ErrNotFound is returned when a menu item does not exist.
var ErrNotFound = errors.New("menu item not found")
