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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/catalog"
	"github.com/platewise/checkout-api/internal/config"
	"github.com/platewise/checkout-api/internal/order"
	"github.com/platewise/checkout-api/internal/router"
	"github.com/platewise/checkout-api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	// Postgres: the catalog's source of truth
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Redis: best-effort menu cache. The service degrades to Postgres-only
	// reads if Redis is down, so a failed ping is a warning, not fatal.
	var menuCache catalog.MenuCache
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: invalid REDIS_URL, menu caching disabled: %v", err)
	} else {
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: redis unreachable, menu caching degraded: %v", err)
		}
		menuCache = catalog.NewRedisCache(rdb)
	}

	menu := catalog.NewService(catalog.NewStore(pool), menuCache)
	carts := cart.NewStore()

	hub := ws.NewHub()
	go hub.Run()

	submitter := order.NewSubmitter(order.NewClient(cfg.OrderAPIURL), carts, router.HubNotifier{Hub: hub})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(cfg, menu, carts, submitter, hub),
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
