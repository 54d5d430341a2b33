package store

import "errors"

// ErrDriverUnavailable names the driver-unavailable error kind. No
// function in this package returns it: a failed Send is reported as
// false and parked for retry, and a closed driver is not detected.
var ErrDriverUnavailable = errors.New("store: driver unavailable")
