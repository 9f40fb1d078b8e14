package fluid

import (
	"fmt"
	"math"
)

// Spec is fully resolved range: all dimensions carry units and px values
// are converted to rem.
type Spec struct {
	Min       Dimension
	Max       Dimension
	ScreenMin Dimension
	ScreenMax Dimension
}

// Resolve binds range parameters positionally to min, max, screenMin and
// screenMax, resolves ratio endpoints and normalizes units. Missing screen
// sizes are taken from options.
func (r *Resolver) Resolve(params []string) (Spec, error) {
	param := func(i int, def string) string {
		if i < len(params) {
			return params[i]
		}
		return def
	}

	userMin, userMax := param(0, ""), param(1, "")
	if userMin == "" {
		return Spec{}, fmt.Errorf("%w: missing minimum", ErrInvalidValue)
	}
	if userMax == "" {
		return Spec{}, ErrMissingMaximumUnit
	}

	minDim, err := ParseDimension(userMin)
	if err != nil {
		return Spec{}, err
	}
	maxDim, err := ParseDimension(userMax)
	if err != nil {
		return Spec{}, err
	}

	switch {
	case minDim.IsRatio() && maxDim.IsRatio():
		return Spec{}, ErrAmbiguousRatio
	case minDim.IsRatio():
		if minDim.Value == 0 {
			return Spec{}, fmt.Errorf("%w: minimum ratio must not be zero", ErrInvalidValue)
		}
		minDim = minFromRatio(minDim.Value, maxDim)
	case maxDim.IsRatio():
		maxDim = maxFromRatio(minDim, maxDim.Value)
	}
	if maxDim.Unit == "" {
		return Spec{}, ErrMissingMaximumUnit
	}

	screenMin, err := screenDimension(param(2, r.opts.ScreenMin), ErrMissingScreenMinUnit)
	if err != nil {
		return Spec{}, err
	}
	screenMax, err := screenDimension(param(3, r.opts.ScreenMax), ErrMissingScreenMaxUnit)
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		Min:       minDim.Rem(r.opts.RootRem),
		Max:       maxDim.Rem(r.opts.RootRem),
		ScreenMin: screenMin.Rem(r.opts.RootRem),
		ScreenMax: screenMax.Rem(r.opts.RootRem),
	}, nil
}

// Negative ratio multiplies, non-negative divides.
func minFromRatio(ratio float64, upper Dimension) Dimension {
	if ratio < 0 {
		return Dimension{Value: upper.Value * math.Abs(ratio), Unit: upper.Unit}
	}
	return Dimension{Value: upper.Value / ratio, Unit: upper.Unit}
}

// Negative ratio divides, non-negative multiplies.
func maxFromRatio(lower Dimension, ratio float64) Dimension {
	if ratio < 0 {
		return Dimension{Value: lower.Value / math.Abs(ratio), Unit: lower.Unit}
	}
	return Dimension{Value: lower.Value * ratio, Unit: lower.Unit}
}

func screenDimension(s string, missing error) (Dimension, error) {
	if s == "" {
		return Dimension{}, missing
	}
	d, err := ParseDimension(s)
	if err != nil {
		return Dimension{}, err
	}
	if d.IsRatio() {
		return Dimension{}, missing
	}
	return d, nil
}
