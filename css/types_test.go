package css_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rangecss/css"
)

func selectors(items []css.Item) []string {
	var out []string
	for _, item := range items {
		switch {
		case item.Rule != nil:
			out = append(out, item.Rule.Selector)
		case item.AtRule != nil:
			out = append(out, "@"+item.AtRule.Name+" "+item.AtRule.Params)
		}
	}
	return out
}

func TestRule_AppendRemove(t *testing.T) {
	a := &css.Declaration{Property: "color", Value: "red"}
	b := &css.Declaration{Property: "margin", Value: "0"}
	rule := css.NewRule(".x", a)

	rule.Append(b)
	if len(rule.Declarations) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(rule.Declarations))
	}

	if !rule.Remove(a) {
		t.Fatal("expected declaration to be removed")
	}
	if rule.Remove(a) {
		t.Error("expected second removal to report false")
	}
	if len(rule.Declarations) != 1 || rule.Declarations[0] != b {
		t.Errorf("expected only margin to remain, got %+v", rule.Declarations)
	}

	// identity, not equality
	twin := &css.Declaration{Property: "margin", Value: "0"}
	if rule.Remove(twin) {
		t.Error("expected equal but distinct declaration not to be removed")
	}
}

func TestStylesheet_InsertAfter(t *testing.T) {
	first := css.NewRule(".first")
	second := css.NewRule(".second")
	nested := css.NewRule(".nested")
	outer := css.NewMedia("print", nested)

	sheet := &css.Stylesheet{Items: []css.Item{{Rule: first}, {AtRule: outer}, {Rule: second}}}

	low := css.NewMedia("(min-width: 48rem)", css.NewRule(".first"))
	high := css.NewMedia("(min-width: 100rem)", css.NewRule(".first"))

	if !sheet.InsertAfter(css.Item{Rule: first}, css.Item{AtRule: low}) {
		t.Fatal("expected insert after top-level rule")
	}
	if !sheet.InsertAfter(css.Item{AtRule: low}, css.Item{AtRule: high}) {
		t.Fatal("expected insert after inserted block")
	}
	want := []string{".first", "@media (min-width: 48rem)", "@media (min-width: 100rem)", "@media print", ".second"}
	if diff := cmp.Diff(want, selectors(sheet.Items)); diff != "" {
		t.Errorf("unexpected items (-want +got):\n%s", diff)
	}

	inner := css.NewMedia("(min-width: 48rem)", css.NewRule(".nested"))
	if !sheet.InsertAfter(css.Item{Rule: nested}, css.Item{AtRule: inner}) {
		t.Fatal("expected insert after nested rule")
	}
	if diff := cmp.Diff([]string{".nested", "@media (min-width: 48rem)"}, selectors(outer.Items)); diff != "" {
		t.Errorf("unexpected nested items (-want +got):\n%s", diff)
	}

	if sheet.InsertAfter(css.Item{Rule: css.NewRule(".missing")}, css.Item{Rule: css.NewRule(".x")}) {
		t.Error("expected insert after unknown item to fail")
	}
}

func TestStylesheet_Container(t *testing.T) {
	top := css.NewRule(".top")
	deep := css.NewRule("from")
	frames := &css.AtRule{Name: "keyframes", Params: "k", Block: true, Items: []css.Item{{Rule: deep}}}
	outer := &css.AtRule{Name: "supports", Params: "(display: grid)", Block: true, Items: []css.Item{{AtRule: frames}}}
	sheet := &css.Stylesheet{Items: []css.Item{{Rule: top}, {AtRule: outer}}}

	tests := []struct {
		name string
		ref  css.Item
		want *css.AtRule
		ok   bool
	}{
		{"top-level rule", css.Item{Rule: top}, nil, true},
		{"top-level at-rule", css.Item{AtRule: outer}, nil, true},
		{"nested at-rule", css.Item{AtRule: frames}, outer, true},
		{"deeply nested rule", css.Item{Rule: deep}, frames, true},
		{"unknown rule", css.Item{Rule: css.NewRule(".missing")}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sheet.Container(tt.ref)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Container() = %v, %t, want %v, %t", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStylesheet_WalkRulesSnapshot(t *testing.T) {
	a := css.NewRule(".a")
	b := css.NewRule(".b")
	sheet := &css.Stylesheet{Items: []css.Item{{Rule: a}, {Rule: b}}}

	var visited []string
	err := sheet.WalkRules(func(r *css.Rule) error {
		visited = append(visited, r.Selector)
		sheet.InsertAfter(css.Item{Rule: r}, css.Item{AtRule: css.NewMedia("print", css.NewRule(r.Selector+"-generated"))})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{".a", ".b"}, visited); diff != "" {
		t.Errorf("inserted rules must not be visited (-want +got):\n%s", diff)
	}
	if len(sheet.Items) != 4 {
		t.Errorf("expected 4 items after walk, got %d", len(sheet.Items))
	}
}

func TestStylesheet_WalkRulesStops(t *testing.T) {
	sheet := &css.Stylesheet{Items: []css.Item{{Rule: css.NewRule(".a")}, {Rule: css.NewRule(".b")}}}

	stop := errors.New("stop")
	count := 0
	err := sheet.WalkRules(func(*css.Rule) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected stop error, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected walk to stop after first rule, visited %d", count)
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	rule := css.NewRule("h1",
		&css.Declaration{Property: "font-size", Value: "1rem"},
		&css.Declaration{Property: "color", Value: "red", Important: true},
	)
	media := css.NewMedia("(min-width: 48rem)", css.NewRule("h1", &css.Declaration{Property: "font-size", Value: "2rem"}))
	imp := &css.AtRule{Name: "import", Params: `url("base.css")`}

	sheet := &css.Stylesheet{Items: []css.Item{{AtRule: imp}, {Rule: rule}, {AtRule: media}}}

	want := `@import url("base.css");

h1 {
  font-size: 1rem;
  color: red !important;
}

@media (min-width: 48rem) {
  h1 {
    font-size: 2rem;
  }
}
`
	var buf bytes.Buffer
	n, err := sheet.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
	if sheet.String() != want {
		t.Error("String() differs from WriteTo output")
	}
}

func TestStylesheet_RoundTrip(t *testing.T) {
	p := css.NewParser(nil)

	input := `.a {
  margin: 0 auto;
}

@media print {
  .a {
    color: black;
  }
}
`
	sheet := p.Parse([]byte(input))
	if diff := cmp.Diff(input, sheet.String()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPosition_String(t *testing.T) {
	if got := (css.Position{}).String(); got != "-" {
		t.Errorf("expected '-', got %q", got)
	}
	if got := (css.Position{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("expected '3:7', got %q", got)
	}
}
