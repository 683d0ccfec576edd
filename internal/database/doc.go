// Package database provides the relational (SQLite through gorm) data access
// layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, services.Store facade
//	├── users/           # User accounts
//	├── books/           # Catalog CRUD and keyword search
//	├── borrowings/      # Borrowing records (source of borrowed book lists)
//	├── reviews/         # Review upsert, listing and dashboard aggregates
//	└── audit/           # Audit trail persistence
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations
// that return raw gorm errors:
//
//	db, err := database.NewDatabase("./bookshelf.db")
//	booksRepo := books.NewRepository(db.DB)
//	found, err := booksRepo.SearchBooks(ctx, "herbert")
//
// # Interface Implementations
//
// The Database struct implements services.Store and audit.EventStore. It
// delegates to the sub-packages and maps gorm errors onto
// services.ErrRecordNotFound and services.ErrDuplicateKey. Multi-record
// operations (DeleteBookCascade) run the sub-package repositories against a
// transaction handle so they commit or roll back together.
package database
