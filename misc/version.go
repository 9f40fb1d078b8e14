// Package misc holds build time information.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X rangecss/misc.version=... -X rangecss/misc.gitHash=...".
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name without extension.
func GetAppName() string {
	name := filepath.Base(os.Args[0])
	if strings.HasSuffix(name, ".test") || strings.HasSuffix(name, ".test.exe") || strings.HasPrefix(name, "__debug_bin") {
		return "rangecss"
	}
	if name = strings.TrimSuffix(name, filepath.Ext(name)); name == "" || name == "." {
		return "rangecss"
	}
	return name
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns source revision program was built from, falls back to
// VCS information recorded by the go tool.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
