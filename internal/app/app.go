// Package app wires configuration, storage and transport into one handler
// used by both the HTTP server and the Lambda entry point.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/config"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/database"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/handler"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/idempotency"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/lock"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/repository"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/service"
	"github.com/go-redis/redis/v8"
)

const (
	lockTTL        = 10 * time.Second
	idempotencyTTL = 24 * time.Hour
)

// Build connects the configured backends and returns the router together with
// a func that releases every connection opened here.
func Build(ctx context.Context, cfg *config.Config) (_ http.Handler, _ func(), err error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			closeAll()
		}
	}()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		log.Println("✓ Connected to Redis")
	}

	var (
		repo   repository.BookingRepository
		locker lock.Locker
	)
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		closers = append(closers, pool.Close)
		log.Println("✓ Connected to PostgreSQL")

		pg := repository.NewPostgresRepository(pool, cfg.Table)
		if err := pg.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		repo, locker = pg, lock.NewPostgres(pool)

	case config.StoreDynamoDB:
		client, err := database.NewDynamoClient(ctx, cfg.Region, cfg.DynamoEndpoint)
		if err != nil {
			return nil, nil, fmt.Errorf("dynamodb: %w", err)
		}
		log.Printf("✓ Using DynamoDB table %s in %s", cfg.Table, cfg.Region)

		repo = repository.NewDynamoRepository(client, cfg.Table)
		if rdb != nil {
			locker = lock.NewRedis(rdb, lockTTL)
		} else {
			locker = lock.Noop{}
			log.Println("warning: REDIS_URL not set, concurrent creates may overbook overlapping dates")
		}

	default:
		repo, locker = repository.NewMemoryRepository(), lock.NewLocal()
		log.Println("✓ Using in-memory store")
	}

	opts := []service.Option{
		service.WithLocker(locker),
		service.WithInventory(cfg.TotalRooms),
	}
	if rdb != nil {
		opts = append(opts, service.WithIdempotency(idempotency.NewRedis(rdb, idempotencyTTL)))
	}

	svc := service.NewBookingService(repo, opts...)
	return handler.NewRouter(handler.NewBookingHandler(svc)), closeAll, nil
}
