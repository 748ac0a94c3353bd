package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blogfront/pkg/cache"
	"blogfront/pkg/cms"
	"blogfront/pkg/config"
	"blogfront/pkg/handlers"
	"blogfront/pkg/logger"
	"blogfront/pkg/metrics"
	"blogfront/pkg/render"
)

const redisPingTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := cms.New(cfg.CMSURL, cms.WithLogger(log))

	renderer, err := render.New(cfg.CMSURL)
	if err != nil {
		log.Fatal("renderer init failed", zap.Error(err))
	}

	var store *cache.Store
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatal("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		store = cache.New(rdb, cfg.CacheTTL, log)
		log.Info("page cache enabled", zap.String("redis", cfg.Redis.Addr))
	} else {
		log.Info("page cache disabled, no redis address configured")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())
	r.Use(handlers.RequestLogger(log))
	r.Use(metrics.Middleware())

	// Static Files & Templates
	r.LoadHTMLGlob("templates/*")
	r.Static("/static", "./static")

	r.GET("/metrics", metrics.Handler())

	h := handlers.New(cfg, client, renderer, store, log)
	h.Register(r)

	log.Info("listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("cms", cfg.CMSURL),
	)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
