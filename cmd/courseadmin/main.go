package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"courseadmin/internal/config"
	"courseadmin/internal/logger"
	"courseadmin/internal/mongo"
	"courseadmin/internal/routing"
	"courseadmin/internal/sqldb"
	"courseadmin/pkg/api"
	"courseadmin/pkg/course"
	"courseadmin/pkg/lesson"
	"courseadmin/pkg/session"
	"courseadmin/pkg/user"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "courseadmin:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logger.Load(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("token store", "store", cfg.TokenStore, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if cfg.TokenSealKey != "" {
		store = session.NewSealedStore(store, cfg.TokenSealKey)
	}

	sessions := session.NewManager(store, logger)
	client := api.NewClient(cfg.APIBaseURL, nil, sessions, logger)

	r := routing.NewRouter(routing.Services{
		Sessions: sessions,
		Users:    user.NewService(client, sessions, logger),
		Courses:  course.NewService(client, cfg.PageSize, logger),
		Lessons:  lesson.NewSequencer(client, logger),
	}, logger)

	// serve right away; routes answer "loading" until the session settles
	ctx, fail := context.WithCancelCause(ctx)
	defer fail(nil)
	go func() {
		if err := sessions.Initialize(ctx); err != nil {
			fail(fmt.Errorf("read stored session: %w", err))
		}
	}()
	go func() {
		select {
		case <-sessions.Ready():
			logger.Info("session ready", "state", sessions.State())
		case <-ctx.Done():
		}
	}()

	if err := routing.StartServer(ctx, cfg.ListenAddr, r, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		logger.Error("startup failed", "error", cause)
		os.Exit(1)
	}
}

// openStore connects the durable token store selected by TOKEN_STORE.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.TokenStore {
	case config.StoreSQLite, config.StoreMySQL:
		driver := "mysql"
		if cfg.TokenStore == config.StoreSQLite {
			driver = "sqlite3"
		}
		db, err := sqldb.Open(ctx, driver, cfg.TokenStoreDSN)
		if err != nil {
			return nil, nil, err
		}
		return session.NewSQLStore(db), func() { db.Close() }, nil

	case config.StoreMongo:
		db, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return session.NewMongoStore(db), func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Error("mongo disconnect", "error", err)
			}
		}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("cannot connect to redis: %w", err)
		}
		return session.NewRedisStore(client, redisKeyPrefix), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
