package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/storage"
)

const (
	CoversFolder   = "covers"
	BooksFolder    = "books"
	ProfilesFolder = "profiles"
)

// AssetUploader sends request files to object storage and hands assets that
// end up unreferenced to an AssetRemover.
type AssetUploader struct {
	storage storage.Client
	remover AssetRemover
}

func NewAssetUploader(client storage.Client, remover AssetRemover) *AssetUploader {
	return &AssetUploader{storage: client, remover: remover}
}

// UploadAll uploads every non-nil upload concurrently. The result is aligned
// with uploads; nil entries stay nil. The first failure cancels the remaining
// uploads and every asset that did make it is discarded.
func (u *AssetUploader) UploadAll(ctx context.Context, uploads ...*storage.Upload) ([]*storage.Asset, error) {
	assets := make([]*storage.Asset, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, upload := range uploads {
		if upload == nil {
			continue
		}
		g.Go(func() error {
			asset, err := u.storage.Upload(gctx, *upload)
			if err != nil {
				return err
			}
			assets[i] = asset
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		u.Discard(ctx, assets...)
		return nil, apperr.Unexpected("Failed to upload files", err)
	}
	return assets, nil
}

// Discard schedules removal of assets that no record references.
func (u *AssetUploader) Discard(ctx context.Context, assets ...*storage.Asset) {
	var orphaned []storage.Asset
	for _, asset := range assets {
		if asset != nil {
			orphaned = append(orphaned, *asset)
		}
	}
	if len(orphaned) == 0 {
		return
	}
	u.remover.RemoveAssets(context.WithoutCancel(ctx), orphaned...)
}

// storedAsset refers to a file already saved on a record. Records without
// an uploaded file have no public id and yield nil.
func storedAsset(class storage.AssetClass, publicID string) *storage.Asset {
	if publicID == "" {
		return nil
	}
	return &storage.Asset{Class: class, PublicID: publicID}
}

// replacedAsset is the stored file that next supersedes, or nil when there
// is none or the provider reused the same id.
func replacedAsset(class storage.AssetClass, publicID string, next *storage.Asset) *storage.Asset {
	if next == nil || next.PublicID == publicID {
		return nil
	}
	return storedAsset(class, publicID)
}

// InlineAssetRemover deletes assets synchronously. It is used when the
// background task queue is disabled.
type InlineAssetRemover struct {
	storage storage.Client
	logger  *zap.Logger
}

func NewInlineAssetRemover(client storage.Client, logger *zap.Logger) *InlineAssetRemover {
	return &InlineAssetRemover{storage: client, logger: logger}
}

func (r *InlineAssetRemover) RemoveAssets(ctx context.Context, assets ...storage.Asset) {
	for _, asset := range assets {
		if err := r.storage.Delete(ctx, asset.Class, asset.PublicID); err != nil {
			r.logger.Warn("failed to remove orphaned asset",
				zap.String("class", string(asset.Class)),
				zap.String("public_id", asset.PublicID),
				zap.Error(err),
			)
		}
	}
}
