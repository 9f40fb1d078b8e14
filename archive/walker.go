// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// Entry is a regular file inside archive visited by Walk.
type Entry struct {
	Archive string    // path to archive passed to Walk
	File    *zip.File // underlying archive entry
	Name    string    // entry name, decoded if code page was forced
}

// ReadAll returns uncompressed content of the entry.
func (e *Entry) ReadAll() ([]byte, error) {
	r, err := e.File.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WalkFunc is called for every entry which satisfies Walk conditions. If an
// error is returned, processing stops.
type WalkFunc func(e *Entry) error

type walkOptions struct {
	codePage encoding.Encoding
	match    func(name string) bool
}

// WithCodePage decodes names of entries not flagged as UTF-8 using enc.
// Names which could not be decoded are passed as is.
func WithCodePage(enc encoding.Encoding) func(*walkOptions) {
	return func(o *walkOptions) {
		o.codePage = enc
	}
}

// WithMatch limits walk to entries whose (decoded) name satisfies fn.
func WithMatch(fn func(name string) bool) func(*walkOptions) {
	return func(o *walkOptions) {
		o.match = fn
	}
}

// Walk calls walkFn for every regular file in the archive with name starting
// with prefix, in natural name order. Archives with absolute entry names or
// names containing ".." are rejected to prevent Zip Slip.
func Walk(archive, prefix string, walkFn WalkFunc, options ...func(*walkOptions)) error {
	opts := &walkOptions{}
	for _, setOpt := range options {
		setOpt(opts)
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	entries := make([]*Entry, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		e := &Entry{Archive: archive, File: f, Name: decodeName(f, opts.codePage)}
		if !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		if opts.match != nil && !opts.match(e.Name) {
			continue
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b *Entry) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, e := range entries {
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

func decodeName(f *zip.File, cp encoding.Encoding) string {
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	if n, err := cp.NewDecoder().String(f.Name); err == nil {
		return n
	}
	return f.Name
}

// isSafePath returns false for absolute paths and those containing ".."
// components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }), "..")
}
