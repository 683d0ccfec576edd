package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// AssetClass separates images (covers, profile photos) from raw documents
// (book files). Providers may store and serve the two differently.
type AssetClass string

const (
	ClassImage AssetClass = "image"
	ClassRaw   AssetClass = "raw"
)

var (
	ErrUnknownClass = errors.New("unknown asset class")
	ErrEmptyUpload  = errors.New("upload has no content")
)

// Upload is a single file handed to a storage provider.
type Upload struct {
	Class       AssetClass
	Folder      string // Logical folder, e.g. "covers" or "books"
	Filename    string // Original client file name
	ContentType string
	Size        int64
	Body        io.Reader
}

// Validate checks that the upload can be sent to a provider.
func (u Upload) Validate() error {
	if u.Class != ClassImage && u.Class != ClassRaw {
		return fmt.Errorf("%w: %q", ErrUnknownClass, u.Class)
	}
	if u.Body == nil {
		return ErrEmptyUpload
	}
	return nil
}

// ObjectName builds a unique, URL-safe object name for the upload inside its folder.
func (u Upload) ObjectName() string {
	name := entities.NewID() + "-" + utils.SanitizeFilename(u.Filename)
	folder := strings.Trim(u.Folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// Asset describes an uploaded file.
type Asset struct {
	Class    AssetClass `json:"class"`
	PublicID string     `json:"publicId"` // Provider identifier used for deletion
	URL      string     `json:"url"`      // Publicly resolvable URL
}

// Client defines the interface for binary object storage providers
type Client interface {
	// Upload stores the content and returns where it can be fetched from
	Upload(ctx context.Context, upload Upload) (*Asset, error)

	// Delete removes a previously uploaded asset
	Delete(ctx context.Context, class AssetClass, publicID string) error
}
