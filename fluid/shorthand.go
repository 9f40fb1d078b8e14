package fluid

// Pair is a single property with its value.
type Pair struct {
	Property string
	Value    string
}

// Expand expands box model shorthand into longhands using CSS 1-to-4 value
// rules. Only margin, padding and their -block/-inline variants are
// recognized, for anything else ok is false.
//
//	margin: 1 2 3       => top 1, right 2, bottom 3, left 2
//	margin-inline: 1 2  => start 1, end 2
func Expand(property string, values []string) (pairs []Pair, ok bool) {
	var v [4]string
	copy(v[:], values)

	switch property {
	case "margin-block", "margin-inline", "padding-block", "padding-inline":
		return []Pair{
			{property + "-start", v[0]},
			{property + "-end", firstOf(v[1], v[0])},
		}, true

	case "margin", "padding":
		return []Pair{
			{property + "-top", v[0]},
			{property + "-right", firstOf(v[1], v[0])},
			{property + "-bottom", firstOf(v[2], v[0])},
			{property + "-left", firstOf(v[3], v[1], v[0])},
		}, true
	}
	return nil, false
}

// Candidates returns pairs to resolve for a declaration. Shorthands are
// expanded, any other property keeps only the first space separated token
// of its value.
func Candidates(property, value string) []Pair {
	values := SplitSpace(value)
	if pairs, ok := Expand(property, values); ok {
		return pairs
	}

	// NOTE: multi-token values are truncated here, output stays compatible
	// with existing stylesheets produced by this tool.
	var first string
	if len(values) > 0 {
		first = values[0]
	}
	return []Pair{{property, first}}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
