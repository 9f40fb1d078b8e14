package fluid

import (
	"slices"

	"go.uber.org/zap"

	"rangecss/css"
)

// Stats summarizes a single Process call.
type Stats struct {
	Declarations int // declarations carrying range notation
	Fluid        int // ranges emitted as clamp()
	Fallback     int // ranges emitted as @media triples
	Unresolved   int // at-rule blocks kept verbatim with range notation inside
}

// Process resolves range notation in every rule of the stylesheet, nested
// rules included. Declarations are handled strictly in document order. The
// first error aborts processing leaving stylesheet partially transformed.
func (r *Resolver) Process(sheet *css.Stylesheet) (Stats, error) {
	var stats Stats
	r.checkVerbatim(sheet.Items, &stats)
	err := sheet.WalkRules(func(rule *css.Rule) error {
		for _, decl := range slices.Clone(rule.Declarations) {
			if err := r.processDeclaration(sheet, rule, decl, &stats); err != nil {
				return err
			}
		}
		return nil
	})
	return stats, err
}

// checkVerbatim reports at-rule blocks which parser could not break into
// rules, range notation there stays as is.
func (r *Resolver) checkVerbatim(items []css.Item, stats *Stats) {
	for _, item := range items {
		at := item.AtRule
		if at == nil {
			continue
		}
		if at.Raw != "" && r.pattern.MatchString(at.Raw) {
			stats.Unresolved++
			r.log.Warn("Range notation left unresolved in verbatim block",
				zap.String("at-rule", "@"+at.Name), zap.Stringer("pos", at.Pos))
		}
		r.checkVerbatim(at.Items, stats)
	}
}

func (r *Resolver) processDeclaration(sheet *css.Stylesheet, rule *css.Rule, decl *css.Declaration, stats *Stats) error {
	if !r.pattern.MatchString(decl.Value) {
		return nil
	}
	stats.Declarations++

	for _, pair := range Candidates(decl.Property, decl.Value) {
		params, ok := r.Match(pair.Value)
		if !ok {
			rule.Append(&css.Declaration{Property: pair.Property, Value: pair.Value, Important: decl.Important, Pos: decl.Pos})
			continue
		}

		spec, err := r.Resolve(params)
		if err != nil {
			return &RangeError{Property: decl.Property, Value: decl.Value, Pos: decl.Pos, Err: err}
		}

		plan := r.Plan(pair.Property, spec)
		out, err := plan.Emit(sheet, rule, decl)
		if err != nil {
			return &RangeError{Property: decl.Property, Value: decl.Value, Pos: decl.Pos, Err: err}
		}

		if plan.Fluid {
			stats.Fluid++
		} else {
			stats.Fallback++
		}
		r.log.Debug("Range resolved",
			zap.String("selector", rule.Selector),
			zap.String("property", pair.Property),
			zap.Stringer("pos", decl.Pos),
			zap.String("value", out.Declaration.Value),
			zap.Bool("fluid", plan.Fluid))
	}

	rule.Remove(decl)
	return nil
}
