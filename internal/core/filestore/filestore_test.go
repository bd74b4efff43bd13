package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesLayout(t *testing.T) {
	base := t.TempDir()
	uploads := filepath.Join(base, "uploads")
	textracted := filepath.Join(base, "textracted")

	s, err := New(uploads, textracted)
	require.NoError(t, err)

	assert.DirExists(t, uploads)
	assert.DirExists(t, textracted)
	assert.DirExists(t, filepath.Join(textracted, "extracted_images"))
	assert.Equal(t, filepath.Join(textracted, "extracted_images"), s.ImagesDir())
}

func TestSaveUploadStripsPathComponents(t *testing.T) {
	s, err := New(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	path, err := s.SaveUpload("../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.UploadDir(), "passwd"), path)
	assert.True(t, s.Exists("passwd"))
}

func TestExistsAndList(t *testing.T) {
	s, err := New(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.Exists("report.txt"))

	_, err = s.SaveUpload("report.txt", strings.NewReader("content"))
	require.NoError(t, err)

	// Directories inside uploads are not documents.
	require.NoError(t, os.Mkdir(filepath.Join(s.UploadDir(), "subdir"), 0o755))

	assert.True(t, s.Exists("report.txt"))
	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"report.txt"}, names)
}

func TestUploadPathResolvesBaseName(t *testing.T) {
	s, err := New(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.UploadDir(), "doc.pdf"), s.UploadPath("nested/doc.pdf"))
}
