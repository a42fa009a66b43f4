package repository

import "errors"

// ErrUnavailable is returned when no persistence store is configured. The
// service runs without a database in degraded mode; operations detect this
// and report soft failures instead of panicking on a nil pool.
var ErrUnavailable = errors.New("persistence store unavailable")
