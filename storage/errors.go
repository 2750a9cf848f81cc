package storage

import "errors"

// ErrNotFound is returned when no record in the collection carries the
// requested identifier
var ErrNotFound = errors.New("record not found")
