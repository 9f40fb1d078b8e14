//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SanitizeFileName drops path and list separators from a file name, leading
// dots are removed so result is never hidden.
func SanitizeFileName(in string) string {
	const forbidden = string(os.PathSeparator) + string(os.PathListSeparator) + "\x00"

	out := strings.TrimLeft(strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, in), ".")
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports whether stream is a terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
