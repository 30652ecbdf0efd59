package injector

import "errors"

// ErrInvalidOptions is returned when injection options are out of range.
var ErrInvalidOptions = errors.New("invalid injection options")
