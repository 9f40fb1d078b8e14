package process

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// filetype needs at most this many bytes to recognize any known format.
const headerSize = 262

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return header[:n], nil
}

// isArchiveFile reports whether path names a zip archive. Both extension and
// content must agree.
func isArchiveFile(path string) (bool, error) {
	header, err := readHeader(path)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	return filetype.Is(header, "zip"), nil
}

// isStylesheetFile reports whether path names a stylesheet: .css extension
// and content not recognized as any binary format.
func isStylesheetFile(path string) (bool, error) {
	header, err := readHeader(path)
	if err != nil {
		return false, err
	}
	return isStylesheetName(path) && isText(header), nil
}

func isStylesheetName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".css")
}

// isText makes sure data does not start with signature of a known binary
// format. Empty data is an empty stylesheet.
func isText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if len(data) > headerSize {
		data = data[:headerSize]
	}
	kind, err := filetype.Match(data)
	return err != nil || kind == filetype.Unknown
}
