package entrypoint

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/docstore"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/storage/providers/cloudinary"
	"github.com/mrlokans/bookshelf/internal/storage/providers/local"
)

// Backend is everything the application persists, regardless of driver.
type Backend interface {
	services.Store
	audit.EventStore
	Ping(ctx context.Context) error
}

// OpenBackend connects to the configured database. The returned function
// releases the connection.
func OpenBackend(ctx context.Context, cfg config.Database, logger *zap.Logger) (Backend, func(context.Context) error, error) {
	switch cfg.Driver {
	case config.DatabaseDriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		store, err := docstore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to document store", zap.String("database", cfg.MongoDatabase))
		return store, store.Close, nil

	case config.DatabaseDriverSQLite, "":
		db, err := database.NewDatabase(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened sqlite database", zap.String("path", cfg.Path))
		return db, func(context.Context) error { return db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenStorage builds the configured asset storage provider. The returned
// directory is non-empty when assets live on local disk and must be served
// by the router.
func OpenStorage(cfg config.Storage) (storage.Client, string, error) {
	switch cfg.Provider {
	case config.StorageProviderCloudinary:
		client, err := cloudinary.NewClient(cloudinary.Config{
			CloudName: cfg.CloudName,
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.APIBaseURL,
			Timeout:   cfg.Timeout,
		})
		if err != nil {
			return nil, "", err
		}
		return client, "", nil

	case config.StorageProviderLocal, "":
		disk, err := local.New(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return disk, disk.RootDir(), nil
	}
	return nil, "", fmt.Errorf("unknown storage provider %q", cfg.Provider)
}
