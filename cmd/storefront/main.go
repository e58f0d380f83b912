package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/storefront/docs"
	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/docstore"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/logging"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/storage"
	"github.com/MikeMC777/storefront/internal/user"
)

// @title        Storefront API
// @version      1.0
// @description  Products, customers and orders of a food-ordering storefront.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := docstore.Open(openCtx, docstore.Options{
		Driver:        cfg.Store.Driver,
		MongoURI:      cfg.Store.MongoURI,
		MongoDatabase: cfg.Store.MongoDatabase,
		PostgresDSN:   cfg.Store.PostgresDSN,
	})
	cancel()
	if err != nil {
		logger.Fatal("store unreachable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()
	logger.Info("store connected", zap.String("driver", cfg.Store.Driver))

	for _, ensure := range []func(context.Context, docstore.Store) error{
		user.EnsureIndexes, product.EnsureIndexes, order.EnsureIndexes,
	} {
		if err := ensure(ctx, store); err != nil {
			logger.Fatal("prepare collections", zap.Error(err))
		}
	}

	images, err := storage.New(ctx, storage.Options{
		Backend:            cfg.Storage.Backend,
		UploadDir:          cfg.Storage.UploadDir,
		PublicBaseURL:      cfg.Storage.PublicBaseURL,
		S3Region:           cfg.Storage.S3Region,
		S3Bucket:           cfg.Storage.S3Bucket,
		S3Prefix:           cfg.Storage.S3Prefix,
		GCSBucket:          cfg.Storage.GCSBucket,
		GCSCredentialsFile: cfg.Storage.GCSCredentialsFile,
		MaxWidth:           cfg.Storage.ImageMaxWidth,
		MaxHeight:          cfg.Storage.ImageMaxHeight,
	}, logger.Named("storage"))
	if err != nil {
		logger.Fatal("image storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	if c, ok := images.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("close image storage", zap.Error(err))
			}
		}()
	}

	limiter := httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	d := deps{
		log:      logger,
		store:    store,
		users:    user.NewService(user.NewDocRepo(store)),
		products: product.NewService(product.NewDocRepo(store), images, logger.Named("product")),
		orders:   order.NewService(order.NewDocRepo(store)),
		metrics:  httpx.NewMetrics("storefront"),
		limiter:  limiter,
		origins:  cfg.Origins(),
	}
	if ls, ok := images.(*storage.LocalStorage); ok {
		d.uploadDir = ls.Dir()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, err := startHealthServer(ctx, cfg.GRPCAddr, store, logger.Named("health"))
	if err != nil {
		logger.Fatal("grpc health", zap.Error(err))
	}

	go func() {
		logger.Info("storefront listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
}
