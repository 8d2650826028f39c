package storage

import "errors"

// ErrObjectNotFound is returned when the object or bucket does not exist.
var ErrObjectNotFound = errors.New("object not found")
