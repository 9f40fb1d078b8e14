package fluid_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"rangecss/css"
	"rangecss/fluid"
)

func process(t *testing.T, input string, mutate func(*fluid.Options)) (string, fluid.Stats, error) {
	t.Helper()

	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	opts := fluid.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	r, err := fluid.NewResolver(opts, log)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	sheet := css.NewParser(log).Parse([]byte(input))
	stats, err := r.Process(sheet)
	return sheet.String(), stats, err
}

func noClamp(o *fluid.Options) { o.Clamp = false }

func TestProcess(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		mutate func(*fluid.Options)
		want   string
		stats  fluid.Stats
	}{
		{
			name:  "clamp with ratio and explicit screens",
			input: `.title { font-size: range(16px, 2, 48rem, 100rem); }`,
			want: `.title {
  font-size: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "no range is untouched",
			input: `.a { color: red; margin: 0 auto; }`,
			want: `.a {
  color: red;
  margin: 0 auto;
}
`,
		},
		{
			name:  "generated declaration goes last",
			input: `.a { font-size: range(16px, 2); color: red; }`,
			want: `.a {
  color: red;
  font-size: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "first token only",
			input: `.a { font-size: range(16px, 2) 10px; }`,
			want: `.a {
  font-size: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "important kept",
			input: `.a { font-size: range(16px, 2) !important; }`,
			want: `.a {
  font-size: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem) !important;
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "shorthand per side",
			input: `.box { margin: range(8px, 16px) auto; }`,
			want: `.box {
  margin-top: clamp(0.5rem, 0.5rem + (1 - 0.5) * ((100vw - 48rem) / (100 - 48)), 1rem);
  margin-right: auto;
  margin-bottom: clamp(0.5rem, 0.5rem + (1 - 0.5) * ((100vw - 48rem) / (100 - 48)), 1rem);
  margin-left: auto;
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 2},
		},
		{
			name:  "decreasing range falls back to media",
			input: `.title { font-size: range(32px, 16px); }`,
			want: `.title {
  font-size: 2rem;
}

@media (min-width: 48rem) {
  .title {
    font-size: calc(2rem + (1 - 2) * ((100vw - 48rem) / (100 - 48)));
  }
}

@media (min-width: 100rem) {
  .title {
    font-size: 1rem;
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fallback: 1},
		},
		{
			name:   "clamp disabled",
			input:  `.a { gap: range(1rem, 2rem, 40rem, 80rem); } .b { color: red; }`,
			mutate: noClamp,
			want: `.a {
  gap: 1rem;
}

@media (min-width: 40rem) {
  .a {
    gap: calc(1rem + (2 - 1) * ((100vw - 40rem) / (80 - 40)));
  }
}

@media (min-width: 80rem) {
  .a {
    gap: 2rem;
  }
}

.b {
  color: red;
}
`,
			stats: fluid.Stats{Declarations: 1, Fallback: 1},
		},
		{
			name:   "later pair blocks precede earlier ones",
			input:  `.a { padding-inline: range(1rem, 2rem) range(3rem, 4rem); }`,
			mutate: noClamp,
			want: `.a {
  padding-inline-start: 1rem;
  padding-inline-end: 3rem;
}

@media (min-width: 48rem) {
  .a {
    padding-inline-end: calc(3rem + (4 - 3) * ((100vw - 48rem) / (100 - 48)));
  }
}

@media (min-width: 100rem) {
  .a {
    padding-inline-end: 4rem;
  }
}

@media (min-width: 48rem) {
  .a {
    padding-inline-start: calc(1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)));
  }
}

@media (min-width: 100rem) {
  .a {
    padding-inline-start: 2rem;
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fallback: 2},
		},
		{
			name:   "nested rule gets blocks in its container",
			input:  `@media print { .a { width: range(10rem, 20rem); } }`,
			mutate: noClamp,
			want: `@media print {
  .a {
    width: 10rem;
  }

  @media (min-width: 48rem) {
    .a {
      width: calc(10rem + (20 - 10) * ((100vw - 48rem) / (100 - 48)));
    }
  }

  @media (min-width: 100rem) {
    .a {
      width: 20rem;
    }
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fallback: 1},
		},
		{
			name:  "container block is processed",
			input: `@container sidebar (min-width: 400px) { .c { width: range(1rem, 2rem) } }`,
			want: `@container sidebar (min-width: 400px) {
  .c {
    width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "scope nested in media",
			input: `@media print { @scope (.card) { .c { width: range(1rem, 2rem); } } }`,
			want: `@media print {
  @scope (.card) {
    .c {
      width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
    }
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:   "starting style gets blocks in its container",
			input:  `@starting-style { .a { width: range(10rem, 20rem); } }`,
			mutate: noClamp,
			want: `@starting-style {
  .a {
    width: 10rem;
  }

  @media (min-width: 48rem) {
    .a {
      width: calc(10rem + (20 - 10) * ((100vw - 48rem) / (100 - 48)));
    }
  }

  @media (min-width: 100rem) {
    .a {
      width: 20rem;
    }
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fallback: 1},
		},
		{
			name:  "keyframes with clamp",
			input: `@keyframes grow { to { width: range(1rem, 2rem); } }`,
			want: `@keyframes grow {
  to {
    width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
  }
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
		{
			name:  "verbatim block is counted",
			input: `@scope (.card) { width: range(1rem, 2rem); }`,
			want: `@scope (.card) {
  width: range(1rem, 2rem);
}
`,
			stats: fluid.Stats{Unresolved: 1},
		},
		{
			name:   "custom prefix",
			input:  `.a { width: Fluid(1rem, 2) range(1rem, 2rem); }`,
			mutate: func(o *fluid.Options) { o.Prefix = "fluid" },
			want: `.a {
  width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}
`,
			stats: fluid.Stats{Declarations: 1, Fluid: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := process(t, tt.input, tt.mutate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.stats, stats); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcess_PrefixInsideGeneratedValue(t *testing.T) {
	// "amp" matches inside generated clamp() values, those must not be
	// processed again.
	got, stats, err := process(t, `.a { width: amp(1rem, 2rem); }`, func(o *fluid.Options) { o.Prefix = "amp" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `.a {
  width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if stats.Fluid != 1 {
		t.Errorf("expected 1 fluid range, got %d", stats.Fluid)
	}
}

func TestProcess_Error(t *testing.T) {
	input := `.a { color: red; }

.b {
  color: blue;
  font-size: range(2, 3);
}

.c { width: range(16px, 2); }`

	_, _, err := process(t, input, nil)

	if !errors.Is(err, fluid.ErrAmbiguousRatio) {
		t.Fatalf("expected ErrAmbiguousRatio, got %v", err)
	}
	var rerr *fluid.RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RangeError, got %T", err)
	}
	if rerr.Property != "font-size" || rerr.Value != "range(2, 3)" {
		t.Errorf("unexpected error attribution: %q %q", rerr.Property, rerr.Value)
	}
	if rerr.Pos.Line != 5 {
		t.Errorf("expected error on line 5, got %s", rerr.Pos)
	}
}

func TestProcess_ErrorStopsStylesheet(t *testing.T) {
	got, stats, err := process(t, `.a { width: range(16px, 2); } .b { width: range(1rem); } .c { width: range(1rem, 2); }`, nil)
	if !errors.Is(err, fluid.ErrMissingMaximumUnit) {
		t.Fatalf("expected ErrMissingMaximumUnit, got %v", err)
	}
	if stats.Fluid != 1 {
		t.Errorf("expected only first range resolved, got %d", stats.Fluid)
	}
	want := `.a {
  width: clamp(1rem, 1rem + (2 - 1) * ((100vw - 48rem) / (100 - 48)), 2rem);
}

.b {
  width: range(1rem);
}

.c {
  width: range(1rem, 2);
}
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_KeyframesFallback(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		mutate func(*fluid.Options)
	}{
		{"min above max", "@keyframes k {\n  from { width: range(20px, 10px); }\n}", nil},
		{"clamp disabled", "@keyframes k {\n  from { width: range(10px, 20px); }\n}", noClamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := process(t, tt.input, tt.mutate)
			if !errors.Is(err, fluid.ErrFallbackInKeyframes) {
				t.Fatalf("expected ErrFallbackInKeyframes, got %v", err)
			}
			var rerr *fluid.RangeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RangeError, got %T", err)
			}
			if rerr.Pos.Line != 2 || rerr.Property != "width" {
				t.Errorf("unexpected error attribution: %s %q", rerr.Pos, rerr.Property)
			}
			if stats.Fallback != 0 {
				t.Errorf("expected no fallback output, got %d", stats.Fallback)
			}
			if strings.Contains(got, "@media") {
				t.Errorf("@media must not be produced inside @keyframes:\n%s", got)
			}
		})
	}
}
