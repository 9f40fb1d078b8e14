package process

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// TestIsArchiveFile tests archive file detection
func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(filePath, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(filePath, []byte("not a real zip file"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "Styles.ZIP")
		zipFile, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create zip file: %v", err)
		}
		w := zip.NewWriter(zipFile)
		f, err := w.Create("site.css")
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := f.Write([]byte("p { margin: 0; }")); err != nil {
			t.Fatalf("Failed to write file in zip: %v", err)
		}
		w.Close()
		zipFile.Close()

		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if !got {
			t.Errorf("isArchiveFile() = %v, want true", got)
		}
	})
}

// TestIsArchiveFile_NonExistent tests with non-existent file
func TestIsArchiveFile_NonExistent(t *testing.T) {
	_, err := isArchiveFile("/nonexistent/file.zip")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestIsStylesheetFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content []byte
		want    bool
	}{
		{"plain stylesheet", "site.css", []byte("p { margin: range(8px, 16px); }"), true},
		{"upper case extension", "SITE.CSS", []byte("p {}"), true},
		{"empty stylesheet", "empty.css", nil, true},
		{"wrong extension", "site.txt", []byte("p {}"), false},
		{"binary content", "image.css", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), false},
		{"archive content", "packed.css", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(filePath, tt.content, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := isStylesheetFile(filePath)
			if err != nil {
				t.Fatalf("isStylesheetFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isStylesheetFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStylesheetFile_NonExistent(t *testing.T) {
	if _, err := isStylesheetFile("/nonexistent/site.css"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}
