package config

// Default locations for local state
const (
	// DefaultDatabasePath is the default path for the SQLite database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultUploadsDir is where the local storage provider keeps uploaded assets
	DefaultUploadsDir = "./uploads"

	// DefaultMongoDatabase is the database name used with the mongo driver
	DefaultMongoDatabase = "bookshelf"
)
