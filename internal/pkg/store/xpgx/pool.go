package xpgx

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool пул соединений, принимающий squirrel-запросы.
type Pool interface {
	Execx(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error)
	Queryx(ctx context.Context, sqlizer sq.Sqlizer) (pgx.Rows, error)
	Begin(ctx context.Context) (Tx, error)
	Close()
}

type Tx interface {
	Execx(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pool struct {
	*pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string) (Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err = p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &pool{p}, nil
}

func (p *pool) Execx(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("ToSql: %w", err)
	}
	return p.Exec(ctx, query, args...)
}

func (p *pool) Queryx(ctx context.Context, sqlizer sq.Sqlizer) (pgx.Rows, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ToSql: %w", err)
	}
	return p.Query(ctx, query, args...)
}

func (p *pool) Begin(ctx context.Context) (Tx, error) {
	t, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("Begin: %w", err)
	}
	return &tx{t}, nil
}

type tx struct {
	pgx.Tx
}

func (t *tx) Execx(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("ToSql: %w", err)
	}
	return t.Exec(ctx, query, args...)
}

// InTx выполняет fn в одной транзакции: commit, если fn без ошибки, иначе rollback.
func InTx(ctx context.Context, p Pool, fn func(Tx) error) error {
	t, err := p.Begin(ctx)
	if err != nil {
		return err
	}

	if err = fn(t); err != nil {
		if rbErr := t.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %s)", err, rbErr.Error())
		}
		return err
	}

	if err = t.Commit(ctx); err != nil {
		return fmt.Errorf("Commit: %w", err)
	}
	return nil
}

// Getx одна строка в T по именам колонок (тег db).
func Getx[T any](ctx context.Context, p Pool, sqlizer sq.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, sqlizer)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// Selectx все строки в []*T.
func Selectx[T any](ctx context.Context, p Pool, sqlizer sq.Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, sqlizer)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}
