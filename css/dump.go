package css

import (
	"fmt"
	"strconv"
	"strings"
)

// treeWriter produces indented human readable tree, two spaces per level.
type treeWriter struct {
	w *strings.Builder
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Dump returns a readable tree of the stylesheet with source positions.
// It exists for debug reports and manual inspection.
func (s *Stylesheet) Dump() string {
	if s == nil {
		return "<nil Stylesheet>"
	}
	tw := treeWriter{w: &strings.Builder{}}
	tw.line(0, "Stylesheet: %d items, %d warnings", len(s.Items), len(s.Warnings))
	dumpItems(tw, s.Items, 1)
	for _, w := range s.Warnings {
		tw.line(1, "Warning: %s", strconv.Quote(w))
	}
	return tw.w.String()
}

func dumpItems(tw treeWriter, items []Item, depth int) {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			tw.line(depth, "Rule[%s] %q", item.Rule.Pos, item.Rule.Selector)
			dumpDeclarations(tw, item.Rule.Declarations, depth+1)
		case item.AtRule != nil:
			at := item.AtRule
			tw.line(depth, "AtRule[%s] @%s %q block=%t", at.Pos, at.Name, at.Params, at.Block)
			dumpDeclarations(tw, at.Declarations, depth+1)
			dumpItems(tw, at.Items, depth+1)
			if at.Raw != "" {
				tw.line(depth+1, "Raw %q", at.Raw)
			}
		}
	}
}

func dumpDeclarations(tw treeWriter, decls []*Declaration, depth int) {
	for _, d := range decls {
		if d.Important {
			tw.line(depth, "Decl[%s] %s: %q !important", d.Pos, d.Property, d.Value)
		} else {
			tw.line(depth, "Decl[%s] %s: %q", d.Pos, d.Property, d.Value)
		}
	}
}
