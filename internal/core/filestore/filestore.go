package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store manages the on-disk document layout: uploaded originals under the
// uploads directory keyed by filename, extraction artifacts under the
// textracted directory keyed by stem, and scaled page images under
// textracted/extracted_images.
type Store struct {
	uploadDir     string
	textractedDir string
	imagesDir     string
}

// New creates the directory layout if missing and returns the store.
func New(uploadDir, textractedDir string) (*Store, error) {
	s := &Store{
		uploadDir:     uploadDir,
		textractedDir: textractedDir,
		imagesDir:     filepath.Join(textractedDir, "extracted_images"),
	}
	for _, dir := range []string{s.uploadDir, s.textractedDir, s.imagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveUpload writes an uploaded file under the uploads directory and returns
// its path. Path components are stripped from the name to keep the layout
// flat.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", name)
	}

	path := filepath.Join(s.uploadDir, base)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// UploadPath resolves a filename to its path in the uploads directory.
func (s *Store) UploadPath(name string) string {
	return filepath.Join(s.uploadDir, filepath.Base(name))
}

// Exists reports whether an uploaded file is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.UploadPath(name))
	return err == nil && !info.IsDir()
}

// List returns the filenames currently in the uploads directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Store) UploadDir() string     { return s.uploadDir }
func (s *Store) TextractedDir() string { return s.textractedDir }
func (s *Store) ImagesDir() string     { return s.imagesDir }
