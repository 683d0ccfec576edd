package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bookshelf/internal/storage"
)

var ErrInvalidPublicID = errors.New("invalid public id")

// Storage keeps uploaded files on local disk. Files live under
// <root>/<class>/<folder>/<name> and are served from publicBaseURL.
type Storage struct {
	rootDir       string
	publicBaseURL string
}

// New creates a disk storage rooted at rootDir.
func New(rootDir, publicBaseURL string) (*Storage, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	return &Storage{
		rootDir:       rootDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// RootDir returns the directory files are written to.
func (s *Storage) RootDir() string {
	return s.rootDir
}

func (s *Storage) Upload(ctx context.Context, upload storage.Upload) (*storage.Asset, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	publicID := upload.ObjectName()
	target, err := s.resolve(upload.Class, publicID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	// Write to a temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(filepath.Dir(target), "upload_tmp_")
	if err != nil {
		return nil, err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := io.Copy(tmpFile, contextReader{ctx: ctx, r: upload.Body}); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return nil, err
	}

	return &storage.Asset{
		Class:    upload.Class,
		PublicID: publicID,
		URL:      s.publicBaseURL + "/" + string(upload.Class) + "/" + publicID,
	}, nil
}

func (s *Storage) Delete(ctx context.Context, class storage.AssetClass, publicID string) error {
	target, err := s.resolve(class, publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps a public id to a path inside the class directory, rejecting
// ids that would escape it.
func (s *Storage) resolve(class storage.AssetClass, publicID string) (string, error) {
	if class != storage.ClassImage && class != storage.ClassRaw {
		return "", fmt.Errorf("%w: %q", storage.ErrUnknownClass, class)
	}

	cleaned := path.Clean("/" + publicID)
	if publicID == "" || cleaned == "/" || cleaned != "/"+publicID {
		return "", fmt.Errorf("%w: %q", ErrInvalidPublicID, publicID)
	}

	return filepath.Join(s.rootDir, string(class), filepath.FromSlash(cleaned[1:])), nil
}

// contextReader stops copying once the request context is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
