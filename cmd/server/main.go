package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastqash/blog/internal/config"
	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/handler"
	"github.com/fastqash/blog/internal/imagehost"
	"github.com/fastqash/blog/internal/logger"
	"github.com/fastqash/blog/internal/router"
	"github.com/fastqash/blog/internal/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogDir, cfg.Development())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatalw("server stopped", "err", err)
	}
}

func run(cfg config.AppConfig, zlog *zap.SugaredLogger) error {
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Open(cfg.Database(logger.Gorm(zlog)))
	if err != nil {
		return err
	}

	if err := db.EnsureUser(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	images, err := newImageHost(cfg)
	if err != nil {
		return err
	}

	tmpl, err := view.Parse()
	if err != nil {
		return err
	}

	api := handler.NewAPI(gdb, imagehost.Instrument(images), view.NewRenderer(tmpl), cfg, zlog)
	defer api.Close()

	r := router.SetupRouter(router.Options{
		API:       api,
		Templates: tmpl,
		DB:        gdb,
		Config:    cfg,
		Logger:    zlog,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Infow("server listening", "addr", cfg.ListenAddr, "driver", cfg.DatabaseDriver, "cloudinary", cfg.UseCloudinary())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newImageHost 配置了 CLOUDINARY_URL 时使用 Cloudinary，否则保存到本地上传目录。
func newImageHost(cfg config.AppConfig) (imagehost.Host, error) {
	if cfg.UseCloudinary() {
		return imagehost.NewCloudinary(cfg.CloudinaryURL)
	}
	return imagehost.NewLocal(cfg.UploadDir, cfg.UploadURLPath), nil
}
