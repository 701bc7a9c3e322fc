package store

import (
	"context"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/store/xpgx"
)

var failuresColumns = []string{"run_id", "table_id", "retries", "reason", "created_at"}

func saveFailuresQuery(runID string, failures map[int64]int, reasons map[int64]string) sq.InsertBuilder {
	ids := make([]int64, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	query := builder().Insert(tableFailures).Columns(failuresColumns[:4]...)
	for _, id := range ids {
		query = query.Values(runID, id, failures[id], reasons[id])
	}

	return query.Suffix(`
on conflict (run_id, table_id)
do update
set
	retries = excluded.retries,
	reason = excluded.reason`)
}

func (s *store) SaveFailures(ctx context.Context, runID string, failures map[int64]int, reasons map[int64]string) error {
	if len(failures) == 0 {
		return nil
	}

	if _, err := s.pool.Execx(ctx, saveFailuresQuery(runID, failures, reasons)); err != nil {
		logger.Error(ctx, err.Error())
		return err
	}

	return nil
}

func (s *store) ListFailures(ctx context.Context, runID *string) ([]*domain.Failure, error) {
	query := builder().Select("run_id::text as run_id", "table_id", "retries", "reason", "created_at").
		From(tableFailures).
		OrderBy("created_at desc", "table_id")

	if runID != nil {
		query = query.Where(sq.Eq{"run_id": *runID})
	}

	selected, err := xpgx.Selectx[domain.Failure](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}
