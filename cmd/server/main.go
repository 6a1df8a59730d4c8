package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/vitrine/internal/config"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/handler"
	"github.com/vitrine/internal/mailer"
	"github.com/vitrine/internal/router"
	"github.com/vitrine/internal/service"
	"github.com/vitrine/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// .env 可选，不存在时只使用进程环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", slog.Any("error", err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.Database.Driver, cfg.Database.DSN()); err != nil {
		logger.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}

	created, err := db.EnsureUser(db.DB, cfg.Site.SuperRootUserName, cfg.Site.SuperRootPassword)
	if err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
		os.Exit(1)
	}
	if created {
		logger.Info("admin user created", slog.String("username", cfg.Site.SuperRootUserName))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, mediaDir, err := newMediaStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize media storage", slog.Any("error", err))
		os.Exit(1)
	}

	api := handler.NewAPI(handler.Options{
		DB:        db.DB,
		Transport: mailer.NewSMTPTransport(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort),
		Store:     store,
		Logger:    logger,
		Contact: service.ContactSettings{
			DefaultFrom: cfg.Mail.DefaultFromEmail,
			SiteURL:     cfg.Site.BaseURL,
		},
	})

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(router.Options{
		API:           api,
		Logger:        logger,
		SessionSecret: cfg.Site.SessionSecret,
		MediaDir:      mediaDir,
		MediaURLPath:  cfg.Media.URLPath,
		SecureCookie:  cfg.Server.GinMode == gin.ReleaseMode,
	})
	if err != nil {
		logger.Error("failed to set up router", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to run server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}

// newMediaStore 按配置选择媒体存储；本地存储时同时返回需要静态托管的目录。
func newMediaStore(ctx context.Context, cfg *config.AppConfig) (storage.Store, string, error) {
	if cfg.Media.Backend == config.MediaMinIO {
		store, err := storage.NewMinIOStore(ctx, cfg.MinIO)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}
	return storage.NewLocalStore(cfg.Media.UploadDir, cfg.Media.URLPath), cfg.Media.UploadDir, nil
}
