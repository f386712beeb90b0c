package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStore resolves catalog ids to the PDF files stored under a base directory.
type DocumentStore struct {
	baseDir   string
	extension string
}

// NewDocumentStore returns a store rooted at baseDir. The directory is not
// created; documents are provisioned out of band.
func NewDocumentStore(baseDir string) *DocumentStore {
	if baseDir == "" {
		baseDir = "./downloads"
	}
	return &DocumentStore{baseDir: baseDir, extension: ".pdf"}
}

// Path returns the file path for a document id, following the {dir}/{id}.pdf layout.
func (s *DocumentStore) Path(documentID string) (string, error) {
	id := strings.TrimSpace(documentID)
	if id == "" {
		return "", fmt.Errorf("document id required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid document id %q", documentID)
	}
	return filepath.Join(s.baseDir, id+s.extension), nil
}

// Exists reports whether the document file is present.
func (s *DocumentStore) Exists(documentID string) bool {
	path, err := s.Path(documentID)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// BaseDir exposes the configured root (useful for diagnostics).
func (s *DocumentStore) BaseDir() string {
	return s.baseDir
}
