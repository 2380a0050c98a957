package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDocumentPathWithinRoot(t *testing.T) {
	svc := &ServiceContext{StorageRoot: t.TempDir()}

	path, err := svc.DocumentPath("ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "ABC123.pdf" {
		t.Errorf("unexpected document path: %s", path)
	}

	hl, err := svc.HighlightedDocumentPath("ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(hl, "ABC123.pdf_highlighted.pdf") {
		t.Errorf("unexpected highlighted path: %s", hl)
	}
}

func TestDocumentPathRejectsTraversal(t *testing.T) {
	svc := &ServiceContext{StorageRoot: t.TempDir()}

	for _, id := range []string{
		"../secrets",
		"../../etc/passwd",
		"a/../../b",
	} {
		_, err := svc.DocumentPath(id)
		var traversal *PathTraversalError
		if !errors.As(err, &traversal) {
			t.Errorf("DocumentPath(%q): expected *PathTraversalError, got %v", id, err)
		}
	}
}
