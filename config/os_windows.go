//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// SanitizeFileName drops characters Windows does not allow in file names,
// trailing dots and spaces are removed too.
func SanitizeFileName(in string) string {
	const forbidden = `<>":/\|?*` + "\x00"

	out := strings.TrimRight(strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, in), ". ")
	if len(out) == 0 {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput turns on VT100 sequence processing for console stream.
// Only Windows 10 and later consoles support it.
func EnableColorOutput(stream *os.File) bool {
	if v := windows.RtlGetVersion(); v == nil || v.MajorVersion < 10 {
		return false
	}
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	h := windows.Handle(stream.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
