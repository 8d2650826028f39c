package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"campuscomplaint/internal/backend"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/internal/common/storage"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/stubserver.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, closeAll, err := buildComponents(ctx, appCfg)
	if err != nil {
		logger.Error(ctx, "init components failed", zap.Error(err))
		return
	}
	defer closeAll()

	gin.SetMode(gin.ReleaseMode)
	srv, err := backend.New(ctx, appCfg.Backend, comps)
	if err != nil {
		logger.Error(ctx, "build backend failed", zap.Error(err))
		return
	}

	httpServer := &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      srv.Engine,
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
		IdleTimeout:  appCfg.Server.IdleTimeout,
	}
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(ctx, "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "stub server started", zap.String("addr", appCfg.Server.Addr), zap.String("public_url", appCfg.Backend.PublicURL))
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

// buildComponents opens the optional external backends. closeAll releases whatever was opened.
func buildComponents(ctx context.Context, cfg *AppConfig) (backend.Components, func(), error) {
	var (
		comps   backend.Components
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn(context.Background(), "close component failed", zap.Error(err))
			}
		}
	}

	if cfg.Storage.Backend == "minio" {
		photos, err := storage.NewMinIOStorage(cfg.Storage.MinIO)
		if err != nil {
			return comps, closeAll, fmt.Errorf("init minio failed: %w", err)
		}
		if err := photos.EnsureBucket(ctx, cfg.Backend.Complaints.Bucket); err != nil {
			return comps, closeAll, err
		}
		comps.Photos = photos
		logger.Info(ctx, "photo storage ready", zap.String("endpoint", cfg.Storage.MinIO.Endpoint), zap.String("bucket", cfg.Backend.Complaints.Bucket))
	}

	if cfg.OTPStore.Backend == kv.BackendRedis {
		store, err := kv.Open(ctx, kv.Config{Backend: kv.BackendRedis, Redis: cfg.OTPStore.Redis})
		if err != nil {
			return comps, closeAll, fmt.Errorf("init redis otp store failed: %w", err)
		}
		closers = append(closers, store.Close)
		comps.OTPStore = store
	}

	if cfg.Geocoder.Enabled {
		comps.Geocoder = complaint.NewNominatimGeocoder(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	}
	return comps, closeAll, nil
}
