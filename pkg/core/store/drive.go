package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// RemoteFile identifies a PDF sitting in the watched Drive folder.
type RemoteFile struct {
	ID   string
	Name string
}

// DocumentSource is where source PDFs come from. The pipeline only needs
// listing and download; idempotency is the Ledger's job.
type DocumentSource interface {
	ListPDFs(ctx context.Context, folderID string) ([]RemoteFile, error)
	Download(ctx context.Context, file RemoteFile) (string, error)
}

var _ DocumentSource = (*DriveSource)(nil)

// DriveSource lists and downloads PDF documents from a Google Drive
// folder into a local working directory.
type DriveSource struct {
	svc         *drive.Service
	downloadDir string
}

// NewDriveSource builds a source that downloads into downloadDir.
// Credentials come from the service account file named by
// GOOGLE_SERVICE_ACCOUNT_FILE.
func NewDriveSource(ctx context.Context, downloadDir string) (*DriveSource, error) {
	credFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credFile == "" {
		return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_FILE environment variable not set")
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	if downloadDir == "" {
		downloadDir = "tmp"
	}
	return &DriveSource{svc: svc, downloadDir: downloadDir}, nil
}

// ListPDFs returns the PDF files directly inside the given folder.
func (d *DriveSource) ListPDFs(ctx context.Context, folderID string) ([]RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/pdf'", folderID)
	resp, err := d.svc.Files.List().
		Q(query).
		PageSize(1000).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list drive folder %s: %w", folderID, err)
	}

	files := make([]RemoteFile, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, RemoteFile{ID: f.Id, Name: f.Name})
	}
	if len(files) == 0 {
		log.Printf("[DRIVE] No PDF files found in folder %s", folderID)
	} else {
		log.Printf("[DRIVE] Found %d PDF files in folder %s", len(files), folderID)
	}
	return files, nil
}

// Download fetches the file contents into the download directory and
// returns the local path.
func (d *DriveSource) Download(ctx context.Context, file RemoteFile) (string, error) {
	if err := os.MkdirAll(d.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	resp, err := d.svc.Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to download file %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	path := filepath.Join(d.downloadDir, filepath.Base(file.Name))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("[DRIVE] Downloaded %s to %s", file.Name, path)
	return path, nil
}
