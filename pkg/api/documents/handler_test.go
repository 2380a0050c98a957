package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ppm_extraction/pkg/core/pipeline"
)

func testHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	root := t.TempDir()
	return NewHandler(&pipeline.ServiceContext{StorageRoot: root}), root
}

func TestServeOriginalDocument(t *testing.T) {
	h, root := testHandler(t)
	if err := os.WriteFile(filepath.Join(root, "ABC123.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents/ABC123", nil)
	rec := httptest.NewRecorder()
	h.HandleDocuments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeHighlightedDocument(t *testing.T) {
	h, root := testHandler(t)
	if err := os.WriteFile(filepath.Join(root, "ABC123.pdf_highlighted.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents/ABC123/highlighted", nil)
	rec := httptest.NewRecorder()
	h.HandleDocuments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRejectTraversal(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/..%2F..%2Fetc%2Fpasswd", nil)
	rec := httptest.NewRecorder()
	h.HandleDocuments(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal request: status = %d, want 400", rec.Code)
	}
}

func uploadRequest(t *testing.T, filename, contentType string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(payload)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadStoresPDF(t *testing.T) {
	h, root := testHandler(t)

	req := uploadRequest(t, "deal.pdf", "application/pdf", []byte("%PDF-1.4"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.FileID == "" {
		t.Error("file_id missing from response")
	}
	if filepath.Dir(resp.FilePath) != root {
		t.Errorf("file stored at %q, want under %q", resp.FilePath, root)
	}
	data, err := os.ReadFile(resp.FilePath)
	if err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("stored content = %q", data)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	h, _ := testHandler(t)

	req := uploadRequest(t, "notes.txt", "text/plain", []byte("hello"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-PDF upload: status = %d, want 400", rec.Code)
	}
}

func TestUploadStripsPathFromFilename(t *testing.T) {
	h, root := testHandler(t)

	req := uploadRequest(t, "../../escape.pdf", "application/pdf", []byte("%PDF-1.4"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(resp.FilePath) != root || !strings.HasSuffix(resp.FilePath, "_escape.pdf") {
		t.Errorf("path-carrying filename escaped the root: %q", resp.FilePath)
	}
}

func TestMissingDocumentIs404(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/NOPE", nil)
	rec := httptest.NewRecorder()
	h.HandleDocuments(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
