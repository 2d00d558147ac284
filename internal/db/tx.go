package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// Store owns the pool and the sqlc queries bound to it.
type Store struct {
	Pool *pgxpool.Pool
	Q    *dbgen.Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool, Q: dbgen.New(pool)}
}

// InTx runs fn inside a transaction. The transaction commits only if fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(q *dbgen.Queries) error) error {
	if s == nil || s.Pool == nil {
		return errors.New("database not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(s.Q.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsNoRows reports whether err is a pgx no-rows error.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
