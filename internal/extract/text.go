package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// TextExtractor converts a resume document on disk into plain text.
type TextExtractor interface {
	Text(path string) (string, error)
}

// DocumentExtractor handles PDF, DOCX and similar formats through docconv,
// falling back to a direct read for plain-text files.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

func (e *DocumentExtractor) Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", path, err)
		}
		return string(data), nil
	default:
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("converting %q: %w", path, err)
		}
		if strings.TrimSpace(res.Body) == "" {
			return "", fmt.Errorf("no text content in %q", path)
		}
		return res.Body, nil
	}
}
