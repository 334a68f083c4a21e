package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tabletalk/icebreaker-backend/internal/auth"
	"github.com/tabletalk/icebreaker-backend/internal/config"
	"github.com/tabletalk/icebreaker-backend/internal/content"
	"github.com/tabletalk/icebreaker-backend/internal/coordinator"
	"github.com/tabletalk/icebreaker-backend/internal/feed"
	"github.com/tabletalk/icebreaker-backend/internal/httpapi"
	"github.com/tabletalk/icebreaker-backend/internal/leaderboard"
	"github.com/tabletalk/icebreaker-backend/internal/store"
	"github.com/tabletalk/icebreaker-backend/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, reading environment directly")
	}
	cfg := config.Load()

	logger, err := newLogger(cfg.DevMode)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}

	var mirror *leaderboard.Mirror
	if cfg.RedisAddr != "" {
		mirror, err = leaderboard.New(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = mirror.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub(ctx, feed.StoreProvider{St: st}, logger)

	// Match membership is asserted by the platform gateway in front of this
	// service; the checker is the seam for deployments that want the engine
	// to re-verify against the group service.
	members := coordinator.MembershipChecker(coordinator.AllowAll{})

	var scoreMirror coordinator.ScoreMirror
	if mirror != nil {
		scoreMirror = mirror
	}
	coord := coordinator.New(st, hub, members, scoreMirror, logger)

	api := httpapi.NewAPI(coord, content.NewStaticLibrary(), mirror, logger)
	wsHandler := ws.NewHandler(hub, st, members, logger)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(api, wsHandler, verifier),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DevMode {
		logger.Info("dev mode: using in-memory store")
		return store.NewMemStore(), nil
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := store.AutoMigrate(db); err != nil {
		return nil, err
	}
	logger.Info("database connected", zap.String("db", cfg.DBName))
	return store.NewGormStore(db), nil
}
