package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"

	"drive-rag/internal/models"
)

// contentAPI fetches file content from the remote store. Narrow interface
// so materialization can be tested without the Drive API.
type contentAPI interface {
	download(ctx context.Context, fileID string) (io.ReadCloser, error)
	export(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error)
}

type driveContent struct {
	svc     *drive.Service
	limiter *RateLimiter
}

func (d *driveContent) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := d.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (d *driveContent) export(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := d.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Materializer downloads or exports remote files into a pipeline-scoped
// temporary directory. The caller owns the returned artifact and must
// delete it once extraction has been attempted.
type Materializer struct {
	api contentAPI
	dir string
	log zerolog.Logger
}

// NewMaterializer creates a Materializer writing artifacts into dir.
func NewMaterializer(svc *drive.Service, limiter *RateLimiter, dir string, log zerolog.Logger) *Materializer {
	return &Materializer{
		api: &driveContent{svc: svc, limiter: limiter},
		dir: dir,
		log: log,
	}
}

// Fetch materializes one file and returns the local artifact path.
// Export-required types are rendered to plain text or CSV by the remote
// service; directly downloadable types are fetched as-is. Any failure
// marks just this file as unavailable.
func (m *Materializer) Fetch(ctx context.Context, f models.RemoteFile) (string, error) {
	cls := Classify(f.MimeType)

	var (
		rc  io.ReadCloser
		err error
	)
	switch cls.Class {
	case ClassExport:
		rc, err = m.api.export(ctx, f.ID, cls.ExportMime)
	case ClassDirect:
		rc, err = m.api.download(ctx, f.ID)
	default:
		return "", ErrUnsupportedType
	}
	if err != nil {
		return "", WrapFetchError(err)
	}
	defer rc.Close()

	path := filepath.Join(m.dir, artifactName(f, cls))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close artifact: %w", err)
	}

	return path, nil
}

// artifactName builds a collision-free local filename that keeps the
// extension hint the extractor switches on.
func artifactName(f models.RemoteFile, cls Classification) string {
	name := sanitizeName(f.Name)
	if filepath.Ext(name) == "" {
		name += cls.Ext
	}
	return f.ID + "_" + name
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
