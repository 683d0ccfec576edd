package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	sdk "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"

	"github.com/mrlokans/bookshelf/internal/storage"
)

const defaultAPIBaseURL = "https://api.cloudinary.com"

var ErrNotConfigured = errors.New("cloudinary cloud name, api key and api secret are required")

// Config holds the account credentials for the upload API.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string // Upload API prefix, defaults to the public Cloudinary API
	Timeout   time.Duration
}

// Client implements storage.Client on top of the Cloudinary SDK.
type Client struct {
	cld *sdk.Cloudinary
}

// NewClient creates a new upload API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}

	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("invalid cloudinary configuration: %w", err)
	}
	conf.API.UploadPrefix = uploadPrefix(cfg.BaseURL)
	if cfg.Timeout > 0 {
		seconds := int64(cfg.Timeout.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		conf.API.Timeout = seconds
		conf.API.UploadTimeout = seconds
	}

	cld, err := sdk.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &Client{cld: cld}, nil
}

// uploadPrefix accepts both the bare host and the older versioned base URL;
// the SDK appends the API version and cloud name itself.
func uploadPrefix(base string) string {
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/v1_1")
	if base == "" {
		return defaultAPIBaseURL
	}
	return base
}

func (c *Client) Upload(ctx context.Context, upload storage.Upload) (*storage.Asset, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}

	params := uploader.UploadParams{
		Folder:       strings.Trim(upload.Folder, "/"),
		ResourceType: string(upload.Class),
	}
	// Raw files keep their extension only when it is part of the public id
	if upload.Class == storage.ClassRaw {
		params.PublicID = path.Base(upload.ObjectName())
	}

	result, err := c.cld.Upload.Upload(ctx, upload.Body, params)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("upload API error: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return nil, errors.New("upload API returned no URL")
	}

	return &storage.Asset{
		Class:    upload.Class,
		PublicID: result.PublicID,
		URL:      result.SecureURL,
	}, nil
}

func (c *Client) Delete(ctx context.Context, class storage.AssetClass, publicID string) error {
	if class != storage.ClassImage && class != storage.ClassRaw {
		return fmt.Errorf("%w: %q", storage.ErrUnknownClass, class)
	}

	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(class),
	})
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("destroy API error: %s", result.Error.Message)
	}
	// "not found" means there is nothing left to clean up
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy API returned %q", result.Result)
	}
	return nil
}
