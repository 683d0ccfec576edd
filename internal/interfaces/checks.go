package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/docstore"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/storage/providers/cloudinary"
	"github.com/mrlokans/bookshelf/internal/storage/providers/local"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Store implementations
var _ services.Store = (*database.Database)(nil)
var _ services.Store = (*docstore.Store)(nil)

// EventStore implementations
var _ audit.EventStore = (*database.Database)(nil)
var _ audit.EventStore = (*docstore.Store)(nil)

// Backend implementations, as selected by DATABASE_DRIVER
var _ entrypoint.Backend = (*database.Database)(nil)
var _ entrypoint.Backend = (*docstore.Store)(nil)

// Health check targets
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*docstore.Store)(nil)

// =============================================================================
// Asset Storage
// =============================================================================

// storage.Client implementations
var _ storage.Client = (*local.Storage)(nil)
var _ storage.Client = (*cloudinary.Client)(nil)

// AssetRemover implementations
var _ services.AssetRemover = (*services.InlineAssetRemover)(nil)
var _ services.AssetRemover = (*tasks.QueuedAssetRemover)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.TokenSigner = (*auth.JWTSigner)(nil)
var _ auth.Denylist = (*auth.RedisDenylist)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.Enqueuer = (*tasks.Client)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
