package css

import (
	"fmt"
	"regexp"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// charsetPattern matches @charset rule, which must be the very first thing in
// the stylesheet and use exactly this form.
var charsetPattern = regexp.MustCompile(`^@charset "([^"]+)";`)

// Decode converts raw stylesheet bytes to UTF-8. Byte order mark takes
// precedence over @charset rule, without either data is expected to be UTF-8.
func Decode(data []byte) ([]byte, error) {
	fallback := unicode.UTF8.NewDecoder()

	if m := charsetPattern.FindSubmatch(data); m != nil {
		enc, err := ianaindex.IANA.Encoding(string(m[1]))
		if err != nil {
			return nil, fmt.Errorf("unknown stylesheet charset %q: %w", m[1], err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported stylesheet charset %q", m[1])
		}
		fallback = enc.NewDecoder()
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet: %w", err)
	}
	return out, nil
}
