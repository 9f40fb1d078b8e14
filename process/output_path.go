package process

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"rangecss/config"
	"rangecss/state"
)

// buildOutputPath returns output file path for stylesheet src (path relative
// to the original source, always including file name) under dst directory.
// Source directory structure is kept unless NoDirs is requested, every path
// segment is cleaned and if requested transliterated.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	parts := []string{dst}
	segments := splitPath(src)
	if len(segments) == 0 {
		return filepath.Join(dst, buildFileName("stdin.css", env))
	}
	if !env.NoDirs {
		for _, s := range segments[:len(segments)-1] {
			parts = append(parts, cleanPathSegment(s, env))
		}
	}
	parts = append(parts, buildFileName(segments[len(segments)-1], env))
	return filepath.Join(parts...)
}

// buildFileName keeps extension of the source (.css when there is none) and
// puts configured suffix in front of it.
func buildFileName(name string, env *state.LocalEnv) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".css"
	}
	return cleanPathSegment(base, env) + env.Cfg.Output.Suffix + ext
}

// splitPath splits slash or OS separated path dropping empty, "." and ".."
// segments.
func splitPath(path string) []string {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	out := segments[:0]
	for _, s := range segments {
		if s == "." || s == ".." {
			continue
		}
		out = append(out, s)
	}
	return out
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.SanitizeFileName(segment)
}
