// Package pdftext extracts plain text from PDF files.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Extractor reads the text layer of PDF documents page by page.
type Extractor struct {
	maxBytes int64
}

// NewExtractor builds an extractor; maxBytes caps the returned text (0 = unlimited).
func NewExtractor(maxBytes int64) *Extractor {
	return &Extractor{maxBytes: maxBytes}
}

// ExtractFile returns the concatenated text of every page in the file.
// The pdf reader panics on malformed object syntax; that is returned as an
// error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf text %s: %v", path, r)
		}
	}()
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}

	var src io.Reader = plain
	if e.maxBytes > 0 {
		src = io.LimitReader(plain, e.maxBytes)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return "", fmt.Errorf("copy pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}
