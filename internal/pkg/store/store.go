package store

import (
	"context"

	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/domain/dto"
	"github.com/ougirez/sidra/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	SaveTable(ctx context.Context, runID string, res *dto.TableResult) error
	SaveFailures(ctx context.Context, runID string, failures map[int64]int, reasons map[int64]string) error

	ListTables(ctx context.Context) ([]*domain.Table, error)
	GetTable(ctx context.Context, id int64) (*domain.Table, error)
	ListVariables(ctx context.Context, tableID int64) ([]*domain.Variable, error)
	ListCategories(ctx context.Context, opts ListCategoriesOpts) ([]*domain.CategoryRow, error)
	ListObservations(ctx context.Context, opts ListObservationsOpts) ([]*domain.Observation, error)
	ListFailures(ctx context.Context, runID *string) ([]*domain.Failure, error)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
