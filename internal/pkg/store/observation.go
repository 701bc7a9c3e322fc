package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/sidra"
	"github.com/ougirez/sidra/internal/pkg/store/xpgx"
)

type ListObservationsOpts struct {
	TableID    int64
	VariableID int64
	Limit      uint64
	Offset     uint64
}

var observationsColumns = []string{"table_id", "variable_id", "row_num", "region", "period", "category", "value", "fields"}

// replaceObservations лист переменной перезаписывается целиком и только полным:
// лист с неуспешными запросами или без строк не трогает сохраненные наблюдения.
func (s *store) replaceObservations(ctx context.Context, runID string, tableID int64, sheet *domain.Sheet) error {
	observations := sidra.Observations(tableID, sheet.VariableID, sheet.Frame)
	if len(sheet.Failed) > 0 || len(observations) == 0 {
		logger.Warnf(ctx, "table %d, variable %d: incomplete sheet (%d rows, %d failed requests), stored observations kept",
			tableID, sheet.VariableID, len(observations), len(sheet.Failed))
		return nil
	}

	err := xpgx.InTx(ctx, s.pool, func(tx xpgx.Tx) error {
		deleteQuery := builder().Delete(tableObservations).
			Where(sq.Eq{"table_id": tableID, "variable_id": sheet.VariableID})
		if _, err := tx.Execx(ctx, deleteQuery); err != nil {
			return fmt.Errorf("delete observations: %w", err)
		}

		for start := 0; start < len(observations); start += insertChunkSize {
			end := min(start+insertChunkSize, len(observations))
			if _, err := tx.Execx(ctx, insertObservationsQuery(runID, observations[start:end])); err != nil {
				return fmt.Errorf("insert observations [%d:%d]: %w", start, end, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debugf(ctx, "saved %d observations for table %d, variable %d", len(observations), tableID, sheet.VariableID)
	return nil
}

func insertObservationsQuery(runID string, observations []domain.Observation) sq.InsertBuilder {
	var run interface{}
	if runID != "" {
		run = runID
	}

	query := builder().Insert(tableObservations).
		Columns(append(observationsColumns, "run_id")...)
	for _, o := range observations {
		query = query.Values(o.TableID, o.VariableID, o.RowNum, o.Region, o.Period, o.Category, o.Value, o.Fields, run)
	}

	return query
}

func listObservationsQuery(opts ListObservationsOpts) sq.SelectBuilder {
	query := builder().Select(observationsColumns...).
		From(tableObservations).
		Where(sq.Eq{"table_id": opts.TableID, "variable_id": opts.VariableID}).
		OrderBy("row_num")

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	return query
}

func (s *store) ListObservations(ctx context.Context, opts ListObservationsOpts) ([]*domain.Observation, error) {
	selected, err := xpgx.Selectx[domain.Observation](ctx, s.pool, listObservationsQuery(opts))
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}
