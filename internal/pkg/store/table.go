package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/domain/dto"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/store/xpgx"
)

type ListCategoriesOpts struct {
	TableID          int64
	ClassificationID *int64
}

// ограничение на число строк в одном insert
const insertChunkSize = 1000

var (
	tablesColumns = []string{
		"id", "name", "subject", "subject_slug", "survey", "url", "frequency",
		"period_start", "period_end", "territorial_levels", "attributes", "created_at", "updated_at",
	}
	variablesColumns  = []string{"table_id", "id", "name", "unit", "summarization"}
	categoriesColumns = []string{"table_id", "classification_id", "classification_name", "id", "name"}
)

func (s *store) SaveTable(ctx context.Context, runID string, res *dto.TableResult) error {
	if err := s.upsertTable(ctx, res.Table); err != nil {
		logger.Errorf(ctx, "upsertTable: %s", err.Error())
		return fmt.Errorf("upsertTable, table-%d: %w", res.Table.ID, err)
	}

	if err := s.upsertVariables(ctx, res.Variables); err != nil {
		logger.Errorf(ctx, "upsertVariables: %s", err.Error())
		return fmt.Errorf("upsertVariables, table-%d: %w", res.Table.ID, err)
	}

	if err := s.upsertCategories(ctx, res.Categories); err != nil {
		logger.Errorf(ctx, "upsertCategories: %s", err.Error())
		return fmt.Errorf("upsertCategories, table-%d: %w", res.Table.ID, err)
	}

	for _, sheet := range res.Sheets {
		if err := s.replaceObservations(ctx, runID, res.Table.ID, sheet); err != nil {
			logger.Errorf(ctx, "replaceObservations: %s", err.Error())
			return fmt.Errorf("replaceObservations, table-%d, sheet-%s: %w", res.Table.ID, sheet.Name, err)
		}
	}

	return nil
}

func upsertTableQuery(t *domain.Table) sq.InsertBuilder {
	attributes := t.Attributes
	if attributes == nil {
		attributes = map[string]string{}
	}
	levels := t.TerritorialLevels
	if levels == nil {
		levels = []string{}
	}

	return builder().Insert(tableTables).
		Columns(tablesColumns[:11]...).
		Values(
			t.ID, t.Name, t.Subject, t.SubjectSlug, t.Survey, t.URL, string(t.Frequency),
			t.PeriodStart, t.PeriodEnd, levels, attributes,
		).
		Suffix(`
on conflict (id)
do update
set
	name = excluded.name,
	subject = excluded.subject,
	subject_slug = excluded.subject_slug,
	survey = excluded.survey,
	url = excluded.url,
	frequency = excluded.frequency,
	period_start = excluded.period_start,
	period_end = excluded.period_end,
	territorial_levels = excluded.territorial_levels,
	attributes = excluded.attributes,
	updated_at = now()`)
}

func (s *store) upsertTable(ctx context.Context, t *domain.Table) error {
	_, err := s.pool.Execx(ctx, upsertTableQuery(t))
	return err
}

func upsertVariablesQuery(variables []domain.Variable) sq.InsertBuilder {
	query := builder().Insert(tableVariables).Columns(variablesColumns...)
	for _, v := range variables {
		summarization := v.Summarization
		if summarization == nil {
			summarization = []string{}
		}
		query = query.Values(v.TableID, v.ID, v.Name, v.Unit, summarization)
	}

	return query.Suffix(`
on conflict (table_id, id)
do update
set
	name = excluded.name,
	unit = excluded.unit,
	summarization = excluded.summarization`)
}

func (s *store) upsertVariables(ctx context.Context, variables []domain.Variable) error {
	for start := 0; start < len(variables); start += insertChunkSize {
		end := min(start+insertChunkSize, len(variables))
		if _, err := s.pool.Execx(ctx, upsertVariablesQuery(variables[start:end])); err != nil {
			return err
		}
	}
	return nil
}

func upsertCategoriesQuery(categories []domain.CategoryRow) sq.InsertBuilder {
	query := builder().Insert(tableCategories).Columns(categoriesColumns...)
	for _, c := range categories {
		query = query.Values(c.TableID, c.ClassificationID, c.ClassificationName, c.ID, c.Name)
	}

	return query.Suffix(`
on conflict (table_id, classification_id, id)
do update
set
	classification_name = excluded.classification_name,
	name = excluded.name`)
}

func (s *store) upsertCategories(ctx context.Context, categories []domain.CategoryRow) error {
	for start := 0; start < len(categories); start += insertChunkSize {
		end := min(start+insertChunkSize, len(categories))
		if _, err := s.pool.Execx(ctx, upsertCategoriesQuery(categories[start:end])); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) ListTables(ctx context.Context) ([]*domain.Table, error) {
	query := builder().Select(tablesColumns...).
		From(tableTables).
		OrderBy("id")

	selected, err := xpgx.Selectx[domain.Table](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}

func (s *store) GetTable(ctx context.Context, id int64) (*domain.Table, error) {
	query := builder().Select(tablesColumns...).
		From(tableTables).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Getx[domain.Table](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) ListVariables(ctx context.Context, tableID int64) ([]*domain.Variable, error) {
	query := builder().Select(variablesColumns...).
		From(tableVariables).
		Where(sq.Eq{"table_id": tableID}).
		OrderBy("id")

	selected, err := xpgx.Selectx[domain.Variable](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}

func listCategoriesQuery(opts ListCategoriesOpts) sq.SelectBuilder {
	query := builder().Select(categoriesColumns...).
		From(tableCategories).
		Where(sq.Eq{"table_id": opts.TableID})

	if opts.ClassificationID != nil {
		query = query.Where(sq.Eq{"classification_id": *opts.ClassificationID})
	}

	return query.OrderBy("classification_id", "id")
}

func (s *store) ListCategories(ctx context.Context, opts ListCategoriesOpts) ([]*domain.CategoryRow, error) {
	selected, err := xpgx.Selectx[domain.CategoryRow](ctx, s.pool, listCategoriesQuery(opts))
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}
