package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathTraversalError means a requested document path resolved outside the
// storage root. It is rejected with a client error, never served.
type PathTraversalError struct {
	Requested string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("requested path escapes storage root: %s", e.Requested)
}

// DocumentPath resolves the deal's original PDF inside the storage root.
func (s *ServiceContext) DocumentPath(dealID string) (string, error) {
	return s.safeJoin(dealID + ".pdf")
}

// HighlightedDocumentPath resolves the deal's annotated PDF copy.
func (s *ServiceContext) HighlightedDocumentPath(dealID string) (string, error) {
	return s.safeJoin(HighlightedPath(dealID + ".pdf"))
}

// RawDumpDocumentPath resolves the deal's raw-answer dump file.
func (s *ServiceContext) RawDumpDocumentPath(dealID string) (string, error) {
	return s.safeJoin(RawDumpPath(dealID + ".pdf"))
}

func (s *ServiceContext) safeJoin(name string) (string, error) {
	absRoot, err := filepath.Abs(s.StorageRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage root: %w", err)
	}

	path := filepath.Join(absRoot, name)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return "", &PathTraversalError{Requested: name}
	}
	return abs, nil
}
