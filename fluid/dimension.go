package fluid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// leading optional sign and digits, the rest is unit
	dimensionPattern = regexp.MustCompile(`^([+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+))(.*)$`)
	unitPattern      = regexp.MustCompile(`^(?:[a-zA-Z]+|%)?$`)
)

// Dimension is a number with optional unit. Empty unit denotes a ratio.
type Dimension struct {
	Value float64
	Unit  string
}

// ParseDimension parses "<number><unit>" or bare "<number>".
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	m := dimensionPattern.FindStringSubmatch(s)
	if m == nil || !unitPattern.MatchString(m[2]) {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("%w: %q: %w", ErrInvalidValue, s, err)
	}
	return Dimension{Value: v, Unit: m[2]}, nil
}

// IsRatio returns true if dimension has no unit.
func (d Dimension) IsRatio() bool {
	return d.Unit == ""
}

// Number returns the numeric part formatted without unit.
func (d Dimension) Number() string {
	return strconv.FormatFloat(d.Value, 'f', -1, 64)
}

func (d Dimension) String() string {
	return d.Number() + d.Unit
}

// Rem converts px to rem using root font size, other units are returned as is.
func (d Dimension) Rem(rootRem float64) Dimension {
	if strings.EqualFold(d.Unit, "px") {
		return Dimension{Value: d.Value / rootRem, Unit: "rem"}
	}
	return d
}

// NormalizeRem converts textual px value to rem, anything else (including
// unparsable input) is returned unchanged.
func NormalizeRem(s string, rootRem float64) string {
	d, err := ParseDimension(s)
	if err != nil || !strings.EqualFold(d.Unit, "px") {
		return s
	}
	return d.Rem(rootRem).String()
}
