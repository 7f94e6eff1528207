package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restlab/config"
	"restlab/dao/query"
	"restlab/logutils"
	"restlab/service"
	"restlab/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		logutils.Log.Error(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("RESTLAB_CONFIG"))
	if err != nil {
		return err
	}
	config.SetConfig(cfg)
	if err := cfg.ConfigureLogging(); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	if cfg.App.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	util.PasswordCost = cfg.Auth.BcryptCost

	if err := query.InitDB(); err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	if err := query.Migrate(query.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var revoker util.Revoker
	if cfg.Auth.RevokeInRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		revoker = util.NewRedisRevoker(client, cfg.Auth.RevokeKeyspace)
	}
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	h := service.NewHandler(service.Options{
		DB:      query.DB,
		Config:  cfg,
		Tokens:  util.GetTokenMgr(),
		Revoker: revoker,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: service.NewRouter(h),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logutils.Log.Infof("%s listening on %s", cfg.App.Name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logutils.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
