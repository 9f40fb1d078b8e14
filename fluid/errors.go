package fluid

import (
	"errors"
	"fmt"

	"rangecss/css"
)

// Invalid range specification errors, use errors.Is to match.
var (
	ErrAmbiguousRatio       = errors.New("range value requires a unit type for the minimum or maximum size")
	ErrMissingMaximumUnit   = errors.New("range value requires a maximum unit size")
	ErrMissingScreenMinUnit = errors.New("range value requires a minimum screen size")
	ErrMissingScreenMaxUnit = errors.New("range value requires a maximum screen size")
	ErrInvalidValue         = errors.New("range value parameter must be a number with optional unit")
	ErrFallbackInKeyframes  = errors.New("range value inside @keyframes can only be emitted as clamp()")
)

// RangeError attributes resolution failure to the originating declaration.
type RangeError struct {
	Property string
	Value    string
	Pos      css.Position
	Err      error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Pos, e.Property, e.Value, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}
