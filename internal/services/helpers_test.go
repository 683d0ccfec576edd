package services_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeStorage records uploads and deletions in memory.
type fakeStorage struct {
	mu        sync.Mutex
	uploads   map[string]string // public id -> content
	deleted   []string
	failClass storage.AssetClass
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string]string{}}
}

func (f *fakeStorage) Upload(ctx context.Context, upload storage.Upload) (*storage.Asset, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	if upload.Class == f.failClass {
		return nil, errors.New("provider unavailable")
	}
	content, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}

	publicID := upload.Folder + "/" + upload.Filename
	f.mu.Lock()
	f.uploads[publicID] = string(content)
	f.mu.Unlock()

	return &storage.Asset{
		Class:    upload.Class,
		PublicID: publicID,
		URL:      "https://cdn.test/" + string(upload.Class) + "/" + publicID,
	}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, class storage.AssetClass, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeStorage) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fixture struct {
	db      *database.Database
	storage *fakeStorage
	assets  *services.AssetUploader
	admin   *entities.User
	member  *entities.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDatabaseWithLogLevel(filepath.Join(t.TempDir(), "services.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fs := newFakeStorage()
	f := &fixture{
		db:      db,
		storage: fs,
		assets:  services.NewAssetUploader(fs, services.NewInlineAssetRemover(fs, zap.NewNop())),
	}
	f.admin = f.createUser(t, "admin@example.com", entities.UserRoleAdmin)
	f.member = f.createUser(t, "member@example.com", entities.UserRoleMember)
	return f
}

func (f *fixture) createUser(t *testing.T, email string, role entities.UserRole) *entities.User {
	t.Helper()
	user := &entities.User{Fullname: "User " + email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, f.db.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) createBook(t *testing.T, isbn string) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:       "Book " + isbn,
		Author:      "Author",
		Category:    "Fiction",
		ISBN:        isbn,
		AdminID:     f.admin.ID,
		BookPrice:   10,
		Description: "desc",
	}
	require.NoError(t, f.db.CreateBook(context.Background(), book))
	return book
}

func (f *fixture) borrowing() *services.BorrowingService {
	svc := services.NewBorrowingService(f.db, f.db, f.db)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}
