package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	// Background work is drained after in-flight requests have finished
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
}

func Run(cfg *config.Config, logger *zap.Logger, version string) {
	logger.Info("starting bookshelf", zap.String("version", version))

	backend, closeBackend, err := OpenBackend(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	storageClient, uploadsDir, err := OpenStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize asset storage", zap.Error(err))
	}
	logger.Info("asset storage ready", zap.String("provider", string(cfg.Storage.Provider)))

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			logger.Fatal("failed to generate token secret", zap.Error(err))
		}
		cfg.Auth.JWTSecret = secret
		logger.Warn("generated a token signing secret, sessions will not survive a restart (set AUTH_JWT_SECRET to persist)")
	}
	signer, err := auth.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		logger.Fatal("failed to create token signer", zap.Error(err))
	}

	var denylist auth.Denylist
	var closeRedis func() error
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := auth.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			logger.Fatal("failed to initialize token denylist", zap.Error(err))
		}
		denylist = auth.NewRedisDenylist(client)
		closeRedis = client.Close
		logger.Info("token denylist enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("REDIS_ADDR is not set, logged out tokens stay valid until they expire")
	}

	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	auditor := audit.NewService(backend, logger)

	inlineRemover := services.NewInlineAssetRemover(storageClient, logger)
	var remover services.AssetRemover = inlineRemover
	var queue tasks.Enqueuer

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), logger)
		if err != nil {
			logger.Fatal("failed to initialize task queue", zap.Error(err))
		}

		taskClient.Register(
			tasks.NewDeleteAssetQueue(storageClient, logger),
			tasks.NewCleanupAuditEventsQueue(auditor, logger),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		queue = taskClient
		remover = tasks.NewQueuedAssetRemover(taskClient, inlineRemover, logger)
	}

	retention := scheduler.NewAuditRetentionScheduler(queue, auditor, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, logger)
	if err := retention.Start(context.Background()); err != nil {
		logger.Fatal("failed to start audit retention scheduler", zap.Error(err))
	}

	assets := services.NewAssetUploader(storageClient, remover)
	cookies := auth.NewCookies(cfg.Auth)

	csrfSecret, err := csrfSecretFrom(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to prepare CSRF secret", zap.Error(err))
	}

	routerCfg := http_controllers.RouterConfig{
		AuthService:      auth.NewService(backend, backend, signer, limiter, denylist, cfg.Auth),
		AuthMiddleware:   auth.NewMiddleware(signer, denylist, backend, cookies, logger),
		Signer:           signer,
		Cookies:          cookies,
		Catalog:          services.NewCatalogService(backend, backend, assets),
		Borrowing:        services.NewBorrowingService(backend, backend, backend),
		Reviews:          services.NewReviewService(backend, backend, backend),
		Dashboard:        services.NewDashboardService(backend, backend),
		Profiles:         services.NewProfileService(backend, backend, assets),
		Auditor:          auditor,
		Logger:           logger,
		Database:         backend,
		Version:          version,
		ClientURL:        cfg.HTTP.ClientURL,
		CSRFSecret:       csrfSecret,
		SecureCookies:    cfg.Auth.SecureCookies,
		MaxBodyBytes:     cfg.HTTP.MaxUploadMB << 20,
		LegacyGetDeletes: cfg.HTTP.LegacyGetDeletes,
		UploadsDir:       uploadsDir,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		retention.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}
		limiter.Stop()
		auditor.Wait()
		if closeRedis != nil {
			if err := closeRedis(); err != nil {
				logger.Error("error closing redis client", zap.Error(err))
			}
		}
		if err := closeBackend(ctx); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}

	Serve(router, cfg, logger, onShutdown)
}

// csrfSecretFrom returns nil when CSRF protection is disabled. A configured
// secret is used hex-decoded when possible and as raw bytes otherwise.
func csrfSecretFrom(cfg config.Auth) ([]byte, error) {
	if !cfg.CSRFEnabled {
		return nil, nil
	}
	if cfg.CSRFSecret != "" {
		if secret, err := hex.DecodeString(cfg.CSRFSecret); err == nil {
			return secret, nil
		}
		return []byte(cfg.CSRFSecret), nil
	}
	generated, err := auth.GenerateSecret()
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(generated)
}
