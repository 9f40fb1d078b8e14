package css

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo writes the stylesheet to w in document order, implementing io.WriterTo.
// Declarations keep their order within a rule.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writeItems(cw, s.Items, 0)
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// countingWriter remembers the first error, subsequent writes are no-ops.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) printf(depth int, format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, "%s"+format, append([]any{strings.Repeat("  ", depth)}, args...)...)
	cw.n += int64(n)
	cw.err = err
}

func (cw *countingWriter) newline() {
	if cw.err != nil {
		return
	}
	n, err := io.WriteString(cw.w, "\n")
	cw.n += int64(n)
	cw.err = err
}

// writeItems writes items separated by blank lines.
func writeItems(cw *countingWriter, items []Item, depth int) {
	for i, item := range items {
		switch {
		case item.Rule != nil:
			writeRule(cw, item.Rule, depth)
		case item.AtRule != nil:
			writeAtRule(cw, item.AtRule, depth)
		}
		if i < len(items)-1 {
			cw.newline()
		}
	}
}

func writeRule(cw *countingWriter, rule *Rule, depth int) {
	cw.printf(depth, "%s {\n", rule.Selector)
	writeDeclarations(cw, rule.Declarations, depth+1)
	cw.printf(depth, "}\n")
}

func writeDeclarations(cw *countingWriter, decls []*Declaration, depth int) {
	for _, d := range decls {
		if d.Important {
			cw.printf(depth, "%s: %s !important;\n", d.Property, d.Value)
		} else {
			cw.printf(depth, "%s: %s;\n", d.Property, d.Value)
		}
	}
}

func writeAtRule(cw *countingWriter, at *AtRule, depth int) {
	prelude := "@" + at.Name
	if at.Params != "" {
		prelude += " " + at.Params
	}
	if !at.Block {
		cw.printf(depth, "%s;\n", prelude)
		return
	}

	cw.printf(depth, "%s {\n", prelude)
	writeDeclarations(cw, at.Declarations, depth+1)
	if len(at.Declarations) > 0 && len(at.Items) > 0 {
		cw.newline()
	}
	writeItems(cw, at.Items, depth+1)
	if at.Raw != "" {
		cw.printf(depth+1, "%s\n", at.Raw)
	}
	cw.printf(depth, "}\n")
}
