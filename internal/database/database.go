package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/borrowings"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

// Database is the relational store. It implements services.Store by
// delegating to the domain repositories and mapping gorm errors onto the
// services sentinels.
type Database struct {
	DB *gorm.DB

	users      *users.Repository
	books      *books.Repository
	borrowings *borrowings.Repository
	reviews    *reviews.Repository
	audit      *audit.Repository
}

// NewDatabase opens (or creates) the SQLite database at dbPath and migrates
// the schema.
func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithLogLevel(dbPath, logger.Warn)
}

// NewDatabaseWithLogLevel is NewDatabase with an explicit gorm log level.
func NewDatabaseWithLogLevel(dbPath string, level logger.LogLevel) (*Database, error) {
	gormLogger := logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:                                   gormLogger,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; serialize access instead of failing with SQLITE_BUSY
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Borrowing{},
		&entities.Review{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	bookRepo := books.NewRepository(db)
	if _, err := bookRepo.BackfillSearchText(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to backfill book search text: %w", err)
	}

	return &Database{
		DB:         db,
		users:      users.NewRepository(db),
		books:      bookRepo,
		borrowings: borrowings.NewRepository(db),
		reviews:    reviews.NewRepository(db),
		audit:      audit.NewRepository(db),
	}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translateError maps gorm and SQLite errors onto the services sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return services.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", services.ErrDuplicateKey, err)
	}
	return err
}

// Users

func (d *Database) CreateUser(ctx context.Context, user *entities.User) error {
	return translateError(d.users.CreateUser(ctx, user))
}

func (d *Database) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := d.users.GetUserByID(ctx, id)
	return user, translateError(err)
}

func (d *Database) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := d.users.GetUserByEmail(ctx, email)
	return user, translateError(err)
}

func (d *Database) UpdateUser(ctx context.Context, user *entities.User) error {
	return translateError(d.users.UpdateUser(ctx, user))
}

func (d *Database) CountUsersByRole(ctx context.Context, role entities.UserRole) (int64, error) {
	count, err := d.users.CountUsersByRole(ctx, role)
	return count, translateError(err)
}

// Books

func (d *Database) CreateBook(ctx context.Context, book *entities.Book) error {
	return translateError(d.books.CreateBook(ctx, book))
}

func (d *Database) GetBookByID(ctx context.Context, id string) (*entities.Book, error) {
	book, err := d.books.GetBookByID(ctx, id)
	return book, translateError(err)
}

func (d *Database) UpdateBook(ctx context.Context, book *entities.Book) error {
	return translateError(d.books.UpdateBook(ctx, book))
}

func (d *Database) ListBooks(ctx context.Context) ([]entities.Book, error) {
	list, err := d.books.ListBooks(ctx)
	return list, translateError(err)
}

func (d *Database) ListBooksByAdmin(ctx context.Context, adminID string) ([]entities.Book, error) {
	list, err := d.books.ListBooksByAdmin(ctx, adminID)
	return list, translateError(err)
}

func (d *Database) SearchBooks(ctx context.Context, keyword string) ([]entities.Book, error) {
	list, err := d.books.SearchBooks(ctx, keyword)
	return list, translateError(err)
}

func (d *Database) CountBooksByAdmin(ctx context.Context, adminID string) (int64, error) {
	count, err := d.books.CountBooksByAdmin(ctx, adminID)
	return count, translateError(err)
}

// DeleteBookCascade removes the book, its borrowings and its reviews in one
// transaction. Any failure rolls the whole deletion back.
func (d *Database) DeleteBookCascade(ctx context.Context, bookID string) (*entities.Book, error) {
	var deleted *entities.Book
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := books.NewRepository(tx).GetBookByID(ctx, bookID)
		if err != nil {
			return err
		}
		if _, err := books.NewRepository(tx).DeleteBook(ctx, bookID); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if _, err := borrowings.NewRepository(tx).DeleteBorrowingsByBook(ctx, bookID); err != nil {
			return fmt.Errorf("delete borrowings: %w", err)
		}
		if _, err := reviews.NewRepository(tx).DeleteReviewsByBook(ctx, bookID); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		deleted = book
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return deleted, nil
}

// Borrowings

func (d *Database) CreateBorrowing(ctx context.Context, borrowing *entities.Borrowing) error {
	return translateError(d.borrowings.CreateBorrowing(ctx, borrowing))
}

func (d *Database) HasBorrowing(ctx context.Context, userID, bookID string) (bool, error) {
	has, err := d.borrowings.HasBorrowing(ctx, userID, bookID)
	return has, translateError(err)
}

func (d *Database) ListBorrowingsByUser(ctx context.Context, userID string) ([]entities.Borrowing, error) {
	list, err := d.borrowings.ListBorrowingsByUser(ctx, userID)
	return list, translateError(err)
}

func (d *Database) BorrowedBookIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := d.borrowings.BorrowedBookIDs(ctx, userID)
	return ids, translateError(err)
}

func (d *Database) CountBorrowingsByUser(ctx context.Context, userID string) (int64, error) {
	count, err := d.borrowings.CountBorrowingsByUser(ctx, userID)
	return count, translateError(err)
}

// Reviews

func (d *Database) UpsertReview(ctx context.Context, review *entities.Review) (bool, error) {
	created, err := d.reviews.UpsertReview(ctx, review)
	return created, translateError(err)
}

func (d *Database) GetReviewByID(ctx context.Context, id string) (*entities.Review, error) {
	review, err := d.reviews.GetReviewByID(ctx, id)
	return review, translateError(err)
}

func (d *Database) ListReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	list, err := d.reviews.ListReviewsByBook(ctx, bookID)
	return list, translateError(err)
}

func (d *Database) DeleteReview(ctx context.Context, id string) error {
	deleted, err := d.reviews.DeleteReview(ctx, id)
	if err != nil {
		return translateError(err)
	}
	if !deleted {
		return services.ErrRecordNotFound
	}
	return nil
}

func (d *Database) ReviewStatsForAdmin(ctx context.Context, adminID string) (services.ReviewStats, error) {
	stats, err := d.reviews.StatsForAdmin(ctx, adminID)
	if err != nil {
		return services.ReviewStats{}, translateError(err)
	}
	result := services.ReviewStats{Count: stats.Count}
	if stats.Average != nil {
		result.Average = *stats.Average
	}
	return result, nil
}

// Audit events

func (d *Database) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	return d.audit.LogEvent(ctx, event)
}

func (d *Database) GetEvents(ctx context.Context, filter entities.AuditEventFilter) ([]entities.AuditEvent, int64, error) {
	return d.audit.GetEvents(ctx, filter)
}

func (d *Database) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	return d.audit.DeleteOldEvents(ctx, olderThan)
}
