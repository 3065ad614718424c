package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for exhibit uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed exhibit MIME types, detected from the file content.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService stores exhibit images (wound photos, ECG strips, diagrams)
// that question prompts reference by URL.
type MediaService struct {
	uploadDir string
	maxBytes  int64
}

// NewMediaService creates a new MediaService writing under uploadDir.
func NewMediaService(uploadDir string, maxBytes int64) *MediaService {
	return &MediaService{uploadDir: uploadDir, maxBytes: maxBytes}
}

// SaveUpload stores an image of the declared size under a UUID filename and
// returns its URL path. The type is sniffed from the first bytes, not taken
// from the client's Content-Type.
func (s *MediaService) SaveUpload(file io.Reader, size int64) (string, error) {
	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.maxBytes)
	}

	br := bufio.NewReaderSize(file, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	// The declared size can lie; cap what is actually written.
	n, err := io.Copy(dst, io.LimitReader(br, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}
	if err != nil {
		os.Remove(destPath)
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write file: %w", err)
	}

	return "/uploads/" + filename, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
