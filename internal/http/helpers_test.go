package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage/providers/local"
)

const (
	testSecret    = "http-test-secret-32-bytes-long!!"
	testClientURL = "http://localhost:5173"
	testPassword  = "secret123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db         *database.Database
	auditor    *audit.Service
	signer     auth.TokenSigner
	router     *gin.Engine
	uploadsDir string
}

// newTestApp wires the full router against a temporary SQLite database and
// local disk storage. configure may adjust the router config before use.
func newTestApp(t *testing.T, configure ...func(*RouterConfig)) *testApp {
	t.Helper()

	db, err := database.NewDatabaseWithLogLevel(filepath.Join(t.TempDir(), "http.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	uploadsDir := t.TempDir()
	disk, err := local.New(uploadsDir, "http://localhost/uploads")
	require.NoError(t, err)

	authCfg := config.Auth{
		JWTSecret:        testSecret,
		TokenExpiry:      time.Hour,
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 3,
	}
	signer, err := auth.NewJWTSigner(authCfg.JWTSecret, authCfg.TokenExpiry)
	require.NoError(t, err)
	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(authCfg))
	t.Cleanup(limiter.Stop)

	log := zap.NewNop()
	auditor := audit.NewService(db, log)
	t.Cleanup(auditor.Wait)

	assets := services.NewAssetUploader(disk, services.NewInlineAssetRemover(disk, log))
	cookies := auth.NewCookies(authCfg)

	cfg := RouterConfig{
		AuthService:      auth.NewService(db, db, signer, limiter, nil, authCfg),
		AuthMiddleware:   auth.NewMiddleware(signer, nil, db, cookies, log),
		Signer:           signer,
		Cookies:          cookies,
		Catalog:          services.NewCatalogService(db, db, assets),
		Borrowing:        services.NewBorrowingService(db, db, db),
		Reviews:          services.NewReviewService(db, db, db),
		Dashboard:        services.NewDashboardService(db, db),
		Profiles:         services.NewProfileService(db, db, assets),
		Auditor:          auditor,
		Logger:           log,
		Database:         db,
		Version:          "test",
		ClientURL:        testClientURL,
		MaxBodyBytes:     1 << 20,
		LegacyGetDeletes: true,
		UploadsDir:       uploadsDir,
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	return &testApp{
		db:         db,
		auditor:    auditor,
		signer:     signer,
		router:     NewRouter(cfg),
		uploadsDir: uploadsDir,
	}
}

// do sends a request, authenticating with token as a bearer token when set.
func (a *testApp) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, path string, payload any, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	return a.do(method, path, body, "application/json", token)
}

// signUp registers an account and returns a token from logging in with it.
func (a *testApp) signUp(t *testing.T, fullname, email, role string) string {
	t.Helper()

	w := a.doJSON(http.MethodPost, "/api/user/register", gin.H{
		"fullname": fullname,
		"email":    email,
		"password": testPassword,
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.doJSON(http.MethodPost, "/api/user/login", gin.H{
		"email":    email,
		"password": testPassword,
		"role":     role,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// addBook creates a book as the admin and returns its id.
func (a *testApp) addBook(t *testing.T, adminToken, title, isbn string) string {
	t.Helper()

	body, contentType := multipartBody(t, map[string]string{
		"title":       title,
		"author":      "Alan Donovan",
		"category":    "Programming",
		"isbn":        isbn,
		"description": "A book about " + title,
		"bookPrice":   "39.99",
	}, nil)
	w := a.do(http.MethodPost, "/api/book/add", body, contentType, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return object(t, decode(t, w), "book")["_id"].(string)
}

type testFile struct {
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]testFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func object(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	value, ok := body[key].(map[string]any)
	require.True(t, ok, "expected %q to be an object in %v", key, body)
	return value
}

func list(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	value, ok := body[key].([]any)
	require.True(t, ok, "expected %q to be a list in %v", key, body)
	return value
}
