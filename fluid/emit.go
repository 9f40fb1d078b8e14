package fluid

import (
	"errors"
	"fmt"
	"strings"

	"rangecss/css"
)

// Plan is emission decision for a single resolved range.
type Plan struct {
	Property string
	Spec     Spec
	// Fluid is true when a single clamp() declaration is emitted, otherwise
	// base declaration and two @media blocks are produced.
	Fluid bool
}

// Emitted holds nodes created by a plan.
type Emitted struct {
	Declaration *css.Declaration // appended to the rule
	Lower       *css.AtRule      // interpolating block, nil for fluid plan
	Upper       *css.AtRule      // max capping block, nil for fluid plan
}

// Plan decides output shape for the resolved range.
func (r *Resolver) Plan(property string, spec Spec) Plan {
	return Plan{
		Property: property,
		Spec:     spec,
		Fluid:    r.opts.Clamp && spec.Min.Value <= spec.Max.Value,
	}
}

// interpolation renders "min + (max - min) * ((100vw - screenMin) / (screenMax - screenMin))"
// with unitless differences.
func (s Spec) interpolation() string {
	return fmt.Sprintf("%s + (%s - %s) * ((100vw - %s) / (%s - %s))",
		s.Min, s.Max.Number(), s.Min.Number(), s.ScreenMin, s.ScreenMax.Number(), s.ScreenMin.Number())
}

// ClampValue returns clamp() expression pinned between min and max.
func (s Spec) ClampValue() string {
	return fmt.Sprintf("clamp(%s, %s, %s)", s.Min, s.interpolation(), s.Max)
}

// CalcValue returns calc() expression interpolating between screen sizes.
func (s Spec) CalcValue() string {
	return "calc(" + s.interpolation() + ")"
}

// Emit writes plan output into the stylesheet. Declarations are appended to
// rule, @media blocks (if any) are inserted right after rule in its
// container: lower block first, upper block after it. Keyframe selectors
// cannot be wrapped in @media, fallback for them fails with
// ErrFallbackInKeyframes.
func (p Plan) Emit(sheet *css.Stylesheet, rule *css.Rule, src *css.Declaration) (Emitted, error) {
	decl := func(value string) *css.Declaration {
		return &css.Declaration{Property: p.Property, Value: value, Important: src.Important, Pos: src.Pos}
	}

	if p.Fluid {
		out := Emitted{Declaration: decl(p.Spec.ClampValue())}
		rule.Append(out.Declaration)
		return out, nil
	}

	container, ok := sheet.Container(css.Item{Rule: rule})
	if !ok {
		return Emitted{}, errors.New("rule does not belong to stylesheet")
	}
	if container != nil && strings.HasSuffix(container.Name, "keyframes") {
		return Emitted{}, ErrFallbackInKeyframes
	}

	out := Emitted{
		Declaration: decl(p.Spec.Min.String()),
		Lower: css.NewMedia(fmt.Sprintf("(min-width: %s)", p.Spec.ScreenMin),
			css.NewRule(rule.Selector, decl(p.Spec.CalcValue()))),
		Upper: css.NewMedia(fmt.Sprintf("(min-width: %s)", p.Spec.ScreenMax),
			css.NewRule(rule.Selector, decl(p.Spec.Max.String()))),
	}
	rule.Append(out.Declaration)

	sheet.InsertAfter(css.Item{Rule: rule}, css.Item{AtRule: out.Lower})
	sheet.InsertAfter(css.Item{AtRule: out.Lower}, css.Item{AtRule: out.Upper})
	return out, nil
}
