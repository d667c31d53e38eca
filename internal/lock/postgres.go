package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Locker backed by session-level advisory locks. The lock is
// held on a dedicated pool connection until released.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres advisory locker.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Lock(ctx context.Context, key string) (func(), error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock %s: %w", key, err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			log.Printf("advisory unlock %s: %v", key, err)
			// A connection still holding the lock must not go back to the pool.
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
	}, nil
}
