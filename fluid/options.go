package fluid

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"go.uber.org/zap"
)

// Defaults used when configuration does not say otherwise.
const (
	DefaultRootRem   = 16
	DefaultPrefix    = "range"
	DefaultScreenMin = "48rem"
	DefaultScreenMax = "100rem"
)

// Options controls range resolution. It is read only for the lifetime of a
// Resolver.
type Options struct {
	// RootRem is the root font size in px used for px to rem conversion.
	RootRem float64
	// Prefix is the name of the range function, matched case-insensitively.
	Prefix string
	// ScreenMin and ScreenMax are used when notation omits screen sizes.
	ScreenMin string
	ScreenMax string
	// Clamp enables single clamp() declaration output.
	Clamp bool
}

// DefaultOptions returns options with all defaults applied.
func DefaultOptions() Options {
	return Options{
		RootRem:   DefaultRootRem,
		Prefix:    DefaultPrefix,
		ScreenMin: DefaultScreenMin,
		ScreenMax: DefaultScreenMax,
		Clamp:     true,
	}
}

func (o Options) validate() error {
	if o.RootRem <= 0 || math.IsInf(o.RootRem, 0) || math.IsNaN(o.RootRem) {
		return fmt.Errorf("root rem must be positive number, got %v", o.RootRem)
	}
	if o.Prefix == "" {
		return errors.New("range prefix must not be empty")
	}
	return nil
}

// Resolver detects and resolves range notation. It holds no per-stylesheet
// state and may be shared between goroutines as long as each processes its
// own stylesheet.
type Resolver struct {
	opts    Options
	pattern *regexp.Regexp
	log     *zap.Logger
}

// NewResolver validates options and returns ready to use resolver.
func NewResolver(opts Options, log *zap.Logger) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Resolver{
		opts:    opts,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(opts.Prefix) + `\s*\((.*)\)`),
		log:     log.Named("range-resolver"),
	}, nil
}

// Options returns options resolver was created with.
func (r *Resolver) Options() Options {
	return r.opts
}

// Match reports whether value contains range notation and returns its
// comma separated parameters.
func (r *Resolver) Match(value string) ([]string, bool) {
	m := r.pattern.FindStringSubmatch(value)
	if m == nil {
		return nil, false
	}
	return SplitComma(m[1]), true
}
