package fluid

import "strings"

// SplitSpace splits CSS value on top-level whitespace: separators inside
// parentheses or quotes are ignored, empty parts are dropped.
//
//	SplitSpace("range(8px, 16px) 0") => ["range(8px, 16px)", "0"]
func SplitSpace(s string) []string {
	return splitList(s, " \t\n\r\f")
}

// SplitComma splits CSS value on top-level commas, see SplitSpace.
func SplitComma(s string) []string {
	return splitList(s, ",")
}

func splitList(s, separators string) []string {
	var (
		out    []string
		cur    strings.Builder
		depth  int
		quote  rune
		escape bool
	)

	flush := func() {
		if part := strings.TrimSpace(cur.String()); part != "" {
			out = append(out, part)
		}
		cur.Reset()
	}

	for _, r := range s {
		switch {
		case escape:
			escape = false
		case r == '\\':
			escape = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && strings.ContainsRune(separators, r):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}
