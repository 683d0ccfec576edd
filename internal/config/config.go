package config

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite DatabaseDriver = "sqlite" // Local SQLite file through gorm (default)
	DatabaseDriverMongo  DatabaseDriver = "mongo"  // MongoDB document store
)

type StorageProvider string

const (
	StorageProviderLocal      StorageProvider = "local"      // Files on local disk served under /uploads
	StorageProviderCloudinary StorageProvider = "cloudinary" // Cloudinary-compatible upload API
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Auth
		Redis
		Storage
		Audit
		Tasks
	}

	HTTP struct {
		Port         int32
		Host         string
		ClientURL    string // Allowed CORS origin of the frontend
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		MaxUploadMB  int64

		// Serve GET aliases of the delete routes for older clients
		LegacyGetDeletes bool
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level       string
		Development bool
	}
	Database struct {
		Driver        DatabaseDriver
		Path          string
		MongoURI      string
		MongoDatabase string
	}
	Auth struct {
		JWTSecret      string
		TokenExpiry    time.Duration
		CookieLifetime time.Duration // Defaults to TokenExpiry when unset
		BcryptCost     int
		SecureCookies  bool // Set to false for local dev without HTTPS
		CSRFEnabled    bool
		CSRFSecret     string

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Redis struct {
		Addr     string // Empty disables the token denylist
		Password string
		DB       int
	}
	Storage struct {
		Provider      StorageProvider
		LocalDir      string
		PublicBaseURL string
		CloudName     string
		APIKey        string
		APISecret     string
		APIBaseURL    string
		Timeout       time.Duration
	}
	Audit struct {
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// CookieMaxAge returns the token cookie lifetime, falling back to the token expiry.
func (a Auth) CookieMaxAge() time.Duration {
	if a.CookieLifetime > 0 {
		return a.CookieLifetime
	}
	return a.TokenExpiry
}

// loadDotEnv reads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are not overridden.
func loadDotEnv(files ...string) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("WARNING: failed to load %s: %v", file, err)
		}
	}
}

func NewConfig() *Config {
	loadDotEnv(".env")
	return newConfigFromEnv()
}

func newConfigFromEnv() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("client_url", "http://localhost:5173")
	v.SetDefault("http_read_timeout", "30s")
	v.SetDefault("http_write_timeout", "2m") // uploads can be slow
	v.SetDefault("http_max_upload_mb", 50)
	v.SetDefault("http_legacy_get_deletes", true)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	v.SetDefault("database_driver", string(DatabaseDriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", DefaultMongoDatabase)

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")        // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "1h")    // Signed token validity
	v.SetDefault("auth_cookie_lifetime", "0s") // 0 = same as token expiry
	v.SetDefault("auth_bcrypt_cost", 10)
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_csrf_secret", "")
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("storage_provider", string(StorageProviderLocal))
	v.SetDefault("storage_local_dir", DefaultUploadsDir)
	v.SetDefault("storage_public_base_url", "http://localhost:8000/uploads")
	v.SetDefault("storage_api_base_url", "https://api.cloudinary.com")
	v.SetDefault("storage_timeout", "60s")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port:             v.GetInt32("PORT"),
			Host:             v.GetString("HOST"),
			ClientURL:        v.GetString("CLIENT_URL"),
			ReadTimeout:      v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:     v.GetDuration("HTTP_WRITE_TIMEOUT"),
			MaxUploadMB:      v.GetInt64("HTTP_MAX_UPLOAD_MB"),
			LegacyGetDeletes: v.GetBool("HTTP_LEGACY_GET_DELETES"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Database: Database{
			Driver:        DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:          v.GetString("DATABASE_PATH"),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			CookieLifetime:   v.GetDuration("AUTH_COOKIE_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFEnabled:      v.GetBool("AUTH_CSRF_ENABLED"),
			CSRFSecret:       v.GetString("AUTH_CSRF_SECRET"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Storage: Storage{
			Provider:      StorageProvider(v.GetString("STORAGE_PROVIDER")),
			LocalDir:      v.GetString("STORAGE_LOCAL_DIR"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
			CloudName:     v.GetString("STORAGE_CLOUD_NAME"),
			APIKey:        v.GetString("STORAGE_API_KEY"),
			APISecret:     v.GetString("STORAGE_API_SECRET"),
			APIBaseURL:    v.GetString("STORAGE_API_BASE_URL"),
			Timeout:       v.GetDuration("STORAGE_TIMEOUT"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
