package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tender-marketplace/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PoolOptions - ограничения пула соединений.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect открывает пул соединений к PostgreSQL и проверяет его.
func Connect(ctx context.Context, dsn string, opts PoolOptions) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return conn, nil
}

// Queries выполняет запросы либо на пуле, либо внутри транзакции.
type Queries struct {
	q sqlx.ExtContext
}

// Storage реализует models.Store поверх *sqlx.DB.
type Storage struct {
	*Queries
	db *sqlx.DB
}

var _ models.Store = (*Storage)(nil)

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{Queries: &Queries{q: db}, db: db}
}

// WithinTx выполняет fn в одной транзакции.
func (s *Storage) WithinTx(ctx context.Context, fn func(tx models.Repository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
