package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/biofert/core/internal/infrastructure/config"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
)

// DB holds the event store connection pool
type DB struct {
	DB *sqlx.DB
}

// PoolStats is the subset of sql.DBStats reported by the readiness check
type PoolStats struct {
	MaxOpen      int           `json:"max_open_connections"`
	Open         int           `json:"open_connections"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// New opens the postgres pool and waits for the server to answer, backing
// off between attempts while it starts up
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := Wrap(conn)
	for attempt := 1; ; attempt++ {
		err = db.HealthCheck(ctx)
		if err == nil {
			return db, nil
		}
		if attempt == connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	conn.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
}

// Wrap adopts an already opened pool, e.g. an in-memory sqlite one in tests
func Wrap(conn *sqlx.DB) *DB {
	return &DB{DB: conn}
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// HealthCheck pings the server
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats reports connection pool usage
func (db *DB) Stats() PoolStats {
	s := db.DB.Stats()
	return PoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

// LockEvents is the advisory lock key held by event mutations
const LockEvents int64 = 0x62696f66 // "biof"

// InLockedTx is InTx holding a transaction-scoped advisory lock on key, so
// read-modify-write transactions sharing the key run one at a time. Only
// postgres needs it; sqlite already admits a single writer.
func (db *DB) InLockedTx(ctx context.Context, key int64, fn func(tx *sqlx.Tx) error) error {
	return db.InTx(ctx, func(tx *sqlx.Tx) error {
		if stmt := advisoryLockStatement(db.DB.DriverName()); stmt != "" {
			if _, err := tx.ExecContext(ctx, stmt, key); err != nil {
				return fmt.Errorf("failed to take advisory lock: %w", err)
			}
		}
		return fn(tx)
	})
}

func advisoryLockStatement(driver string) string {
	switch driver {
	case "postgres", "pgx":
		return `SELECT pg_advisory_xact_lock($1)`
	default:
		return ""
	}
}

// InTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; errors and panics roll it back.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && err != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
