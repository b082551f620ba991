// Package extract defines the text-extraction collaborator and a local file
// implementation for common document formats.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service extracts plain text from the file behind an opaque reference.
type Service interface {
	Extract(ctx context.Context, fileRef string) (string, error)
}

// FileExtractor implements Service for local file paths: PDF, DOCX, and XLSX
// are parsed from their binary formats; everything else is treated as plain
// text (UTF-8 validated).
type FileExtractor struct{}

// NewFileExtractor returns a new FileExtractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract reads the file at fileRef and returns its text content.
func (e *FileExtractor) Extract(ctx context.Context, fileRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(fileRef)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return ExtractBytes(content, strings.ToLower(filepath.Ext(fileRef)))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions are
// treated as plain text.
func ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}
