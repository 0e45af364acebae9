// Package postgres provides the PostgreSQL session journal using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cryptdancer/internal/config"
)

// ApplicationName tags every journal connection in pg_stat_activity.
const ApplicationName = "cryptdancer"

// ErrSchemaMissing is returned by CheckSchema when a journal table has not
// been created. Running cmd/migrate against the database fixes it.
var ErrSchemaMissing = errors.New("journal schema missing")

// journalTables lists the relations Record and the read queries depend on.
var journalTables = []string{"sessions"}

// Pool is the journal's connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the journal database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The database has
// answered a ping upon successful return; the schema is not checked.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing journal dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening journal pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reaching journal database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// CheckSchema verifies that every journal table exists, so that a server
// started against an unmigrated database fails at startup instead of on the
// first finished session.
//
// Postcondition: Returns nil, an error wrapping ErrSchemaMissing naming the
// first absent table, or the query error.
func (p *Pool) CheckSchema(ctx context.Context) error {
	for _, table := range journalTables {
		var present bool
		err := p.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&present)
		if err != nil {
			return fmt.Errorf("looking up table %s: %w", table, err)
		}
		if !present {
			return fmt.Errorf("%w: table %s", ErrSchemaMissing, table)
		}
	}
	return nil
}

// Health pings the journal database, giving up after timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool to the repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
