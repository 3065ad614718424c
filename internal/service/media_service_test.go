package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestMediaService_SavesImage(t *testing.T) {
	dir := t.TempDir()
	s := NewMediaService(dir, 1<<20)

	url, err := s.SaveUpload(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestMediaService_RejectsNonImage(t *testing.T) {
	s := NewMediaService(t.TempDir(), 1<<20)
	body := []byte("<html><body>not an image</body></html>")

	_, err := s.SaveUpload(bytes.NewReader(body), int64(len(body)))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestMediaService_RejectsOversized(t *testing.T) {
	dir := t.TempDir()
	s := NewMediaService(dir, 16)

	_, err := s.SaveUpload(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// A size that understates the body is still caught while copying.
	_, err = s.SaveUpload(bytes.NewReader(pngHeader), 8)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
