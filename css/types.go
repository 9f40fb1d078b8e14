package css

import (
	"fmt"
	"slices"
)

// Position is a location in the stylesheet source, both fields are 1-based.
// Zero Position means the node was not produced by the parser.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if position points into the source.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Declaration represents a single "property: value" pair.
type Declaration struct {
	Property  string   // Property name as written (custom properties keep their case)
	Value     string   // Raw value with whitespace collapsed, without !important
	Important bool     // true if declaration was marked !important
	Pos       Position // Source location for error reporting
}

// Rule represents a qualified rule: selector and ordered declarations.
type Rule struct {
	Selector     string         // Selector text as written, whitespace collapsed
	Declarations []*Declaration // Declarations in source order
	Pos          Position       // Source location of the selector
}

// NewRule creates an empty rule with the given selector.
func NewRule(selector string, decls ...*Declaration) *Rule {
	return &Rule{Selector: selector, Declarations: decls}
}

// Append adds declarations to the end of the rule.
func (r *Rule) Append(decls ...*Declaration) {
	r.Declarations = append(r.Declarations, decls...)
}

// Remove deletes declaration from the rule, returns false if it was not found.
// Declarations are compared by identity.
func (r *Rule) Remove(decl *Declaration) bool {
	i := slices.Index(r.Declarations, decl)
	if i < 0 {
		return false
	}
	r.Declarations = slices.Delete(r.Declarations, i, i+1)
	return true
}

// AtRule represents any @-rule. Statement at-rules (@import, @charset) have
// no block, block at-rules may hold declarations (@font-face, @page) and
// nested items (@media, @supports, @keyframes).
type AtRule struct {
	Name         string         // Name without "@" (e.g., "media")
	Params       string         // Prelude text (e.g., "(min-width: 48rem)")
	Block        bool           // true if at-rule has a {} block
	Declarations []*Declaration // Declarations directly inside the block
	Items        []Item         // Nested rules and at-rules in source order
	Raw          string         // Verbatim block content of unknown at-rules
	Pos          Position       // Source location of the at-keyword
}

// NewMedia creates @media block with the given condition and nested rules.
func NewMedia(params string, rules ...*Rule) *AtRule {
	at := &AtRule{Name: "media", Params: params, Block: true}
	for _, r := range rules {
		at.Items = append(at.Items, Item{Rule: r})
	}
	return at
}

// Item is a single node in a stylesheet or in at-rule block.
// Exactly one of Rule or AtRule is non-nil.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

func (i Item) same(o Item) bool {
	return i.Rule == o.Rule && i.AtRule == o.AtRule
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []Item   // All top-level items in source order
	Warnings []string // Warnings for skipped or malformed input
}

// Rules returns all rules of the stylesheet, including rules nested in
// at-rule blocks, in document order.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	_ = s.WalkRules(func(r *Rule) error {
		rules = append(rules, r)
		return nil
	})
	return rules
}

// WalkRules calls fn for every rule in document order descending into at-rule
// blocks. Walk iterates over snapshots of the containers taken when they are
// entered, so items inserted by fn are not visited. First error returned by
// fn stops the walk.
func (s *Stylesheet) WalkRules(fn func(*Rule) error) error {
	return walkItems(s.Items, fn)
}

func walkItems(items []Item, fn func(*Rule) error) error {
	for _, item := range slices.Clone(items) {
		switch {
		case item.Rule != nil:
			if err := fn(item.Rule); err != nil {
				return err
			}
		case item.AtRule != nil:
			if err := walkItems(item.AtRule.Items, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Container returns at-rule whose block holds ref, nil for top-level items.
// Second value is false if ref is not part of the stylesheet.
func (s *Stylesheet) Container(ref Item) (*AtRule, bool) {
	return containerOf(nil, s.Items, ref)
}

func containerOf(parent *AtRule, items []Item, ref Item) (*AtRule, bool) {
	for _, item := range items {
		if item.same(ref) {
			return parent, true
		}
		if item.AtRule != nil {
			if at, ok := containerOf(item.AtRule, item.AtRule.Items, ref); ok {
				return at, true
			}
		}
	}
	return nil, false
}

// InsertAfter inserts items right after ref in whatever container (the
// stylesheet itself or at-rule block) holds ref. Returns false if ref is not
// part of the stylesheet.
func (s *Stylesheet) InsertAfter(ref Item, items ...Item) bool {
	return insertAfter(&s.Items, ref, items)
}

func insertAfter(container *[]Item, ref Item, items []Item) bool {
	for i, item := range *container {
		if item.same(ref) {
			*container = slices.Insert(*container, i+1, items...)
			return true
		}
		if item.AtRule != nil && insertAfter(&item.AtRule.Items, ref, items) {
			return true
		}
	}
	return false
}
