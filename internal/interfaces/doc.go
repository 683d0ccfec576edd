// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - services.Store: Users, catalog, borrowings and reviews (internal/services/interfaces.go)
//   - audit.EventStore: Audit trail persistence (internal/audit/service.go)
//   - http.Pinger: Liveness of the backing database (internal/http/health.go)
//
// Two backends implement them: database.Database (SQLite through gorm) and
// docstore.Store (MongoDB). entrypoint.OpenBackend picks one from
// DATABASE_DRIVER.
//
// ## Asset Storage Interfaces
//
//   - storage.Client: Upload and delete cover images, book files and profile
//     photos (internal/storage/client.go)
//   - services.AssetRemover: Dispose of orphaned assets, inline or through
//     the task queue (internal/services/interfaces.go)
//
// ## Authentication Interfaces
//
//   - auth.TokenSigner: Issue and verify session tokens (internal/auth/token.go)
//   - auth.Denylist: Revoke tokens on logout (internal/auth/denylist.go)
//
// # Adding a New Storage Provider
//
//  1. Implement storage.Client in internal/storage/providers/<name>/
//
//     type Client struct {
//     bucket string
//     }
//
//     func (c *Client) Upload(ctx context.Context, upload storage.Upload) (*storage.Asset, error)
//     func (c *Client) Delete(ctx context.Context, class storage.AssetClass, publicID string) error
//
//  2. Add a config.StorageProvider value and a case to entrypoint.OpenStorage
//
//  3. Add a compile-time check to checks.go
//
// # Adding a New Database Backend
//
//  1. Implement services.Store, audit.EventStore and Ping in a new package,
//     mapping driver errors onto services.ErrRecordNotFound and
//     services.ErrDuplicateKey
//
//  2. DeleteBookCascade must remove the book, its borrowings and its reviews
//     atomically
//
//  3. Add a config.DatabaseDriver value and a case to entrypoint.OpenBackend
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
