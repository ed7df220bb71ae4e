package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/todo-service/handlers"
	"github.com/gogotex/todo-service/internal/config"
	"github.com/gogotex/todo-service/internal/database"
	"github.com/gogotex/todo-service/internal/todo/cache"
	"github.com/gogotex/todo-service/internal/todo/handler"
	"github.com/gogotex/todo-service/internal/todo/repository"
	"github.com/gogotex/todo-service/internal/todo/service"
	"github.com/gogotex/todo-service/pkg/logger"
	"github.com/gogotex/todo-service/pkg/metrics"
	"github.com/gogotex/todo-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// migrator is implemented by stores that can create their own schema.
type migrator interface {
	Migrate(ctx context.Context) error
}

func main() {
	// LOG_LEVEL is read again from config below; this covers config errors
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s redis=%v cache=%v rate_limit=%v", cfg.Store, cfg.Redis.Host != "", cfg.Cache.Enabled, cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	// Redis is optional: it backs the list cache and the distributed rate limiter
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warnf("redis unavailable, continuing without it: %v", err)
		} else {
			defer rdb.Close()
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			logger.Infof("connected to redis at %s", cfg.Redis.Addr())
		}
	}

	var repo repository.Repository
	switch cfg.Store {
	case config.StoreSQL:
		db, err := database.OpenWithRetry(ctx, cfg.Database, time.Second)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warnf("close database: %v", err)
			}
		}()
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
		repo = repository.NewGormRepo(db)
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB)
		if err != nil {
			logger.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		checks["database"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		repo = repository.NewMongoRepo(client.Database(cfg.MongoDB.Database))
	case config.StoreMemory:
		logger.Warnf("using in-memory store; todos are lost on restart")
		repo = repository.NewMemoryRepo()
	}

	if m, ok := repo.(migrator); ok {
		logger.Infof("Creating tables..")
		if err := m.Migrate(ctx); err != nil {
			logger.Fatalf("schema setup failed: %v", err)
		}
	}

	var listCache service.ListCache
	if cfg.Cache.Enabled {
		if rdb != nil {
			listCache = cache.NewRedisCache(rdb, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
			logger.Infof("todo list cache enabled (ttl=%s)", cfg.Cache.TTL)
		} else {
			logger.Warnf("CACHE_ENABLED is set but redis is unavailable; cache disabled")
		}
	}
	svc := service.NewTodoService(repo, listCache)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.CORS(), middleware.RequestLogger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handlers.RegisterHealth(r, startTime, checks)
	handlers.RegisterDocs(r)
	handler.RegisterTodoRoutes(r, svc)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting todo service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Errorf("server failed: %v", err)
	case <-ctx.Done():
		logger.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("graceful shutdown: %v", err)
	}
}
