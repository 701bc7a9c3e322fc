package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/domain/dto"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/ougirez/sidra/internal/pkg/sidra"
	"github.com/ougirez/sidra/internal/pkg/store"
)

// Describer реализуется *sidra.Client.
type Describer interface {
	Describe(ctx context.Context, tableID int64) (*domain.Description, error)
}

type Service struct {
	store     store.Store
	describer Describer
	format    sidra.FormatConfig
}

func NewCatalogService(store store.Store, describer Describer, format sidra.FormatConfig) *Service {
	return &Service{store: store, describer: describer, format: format}
}

func (s *Service) ListTables(ctx context.Context) ([]*domain.Table, error) {
	return s.store.ListTables(ctx)
}

// GetTable таблица вместе с переменными и классификациями.
func (s *Service) GetTable(ctx context.Context, id int64) (*domain.Table, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTable, id-%d: %w", id, err)
	}

	variables, err := s.store.ListVariables(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListVariables, id-%d: %w", id, err)
	}
	for _, v := range variables {
		table.Variables = append(table.Variables, *v)
	}

	categories, err := s.store.ListCategories(ctx, store.ListCategoriesOpts{TableID: id})
	if err != nil {
		return nil, fmt.Errorf("ListCategories, id-%d: %w", id, err)
	}
	table.Classifications = GroupClassifications(categories)

	return table, nil
}

func (s *Service) ListVariables(ctx context.Context, tableID int64) ([]*domain.Variable, error) {
	return s.store.ListVariables(ctx, tableID)
}

func (s *Service) ListCategories(ctx context.Context, opts store.ListCategoriesOpts) ([]*domain.CategoryRow, error) {
	return s.store.ListCategories(ctx, opts)
}

func (s *Service) ListFailures(ctx context.Context, runID *string) ([]*domain.Failure, error) {
	return s.store.ListFailures(ctx, runID)
}

func (s *Service) Describe(ctx context.Context, tableID int64) (*domain.Description, error) {
	return s.describer.Describe(ctx, tableID)
}

// GetSheet лист "Variável {id}" из сохраненных наблюдений.
func (s *Service) GetSheet(ctx context.Context, opts store.ListObservationsOpts) (*dto.SheetView, error) {
	variables, err := s.store.ListVariables(ctx, opts.TableID)
	if err != nil {
		return nil, fmt.Errorf("ListVariables, id-%d: %w", opts.TableID, err)
	}
	found := false
	for _, v := range variables {
		if v.ID == opts.VariableID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("table %d, variable %d: %w", opts.TableID, opts.VariableID, constants.ErrDBNotFound)
	}

	observations, err := s.store.ListObservations(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("ListObservations: %w", err)
	}

	columns := SheetColumns(observations)
	view := &dto.SheetView{
		Name:       sidra.SheetName(opts.VariableID),
		TableID:    opts.TableID,
		VariableID: opts.VariableID,
		Columns:    columns,
		Rows:       make([][]string, 0, len(observations)),
	}

	for _, o := range observations {
		row := make([]string, len(columns))
		for i, col := range columns {
			if col == sidra.ValueColumn {
				row[i] = s.format.Missing
				if o.Value != nil {
					row[i] = s.format.FormatValue(*o.Value)
				}
				continue
			}
			row[i] = o.Fields[col]
		}
		view.Rows = append(view.Rows, row)
	}

	return view, nil
}

// PreviewWindows окна, которые будут запрошены для диапазона.
func (s *Service) PreviewWindows(frequency, start, end string) ([]dto.WindowView, error) {
	freq, err := sidra.ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}

	windows, err := sidra.Windows(freq, start, end)
	if err != nil {
		return nil, err
	}

	layout := "200601"
	if freq == domain.FrequencyAnnual {
		layout = "2006"
	}

	res := make([]dto.WindowView, 0, len(windows))
	for _, w := range windows {
		res = append(res, dto.WindowView{
			Start:    w.Start.Format(layout),
			End:      w.End.Format(layout),
			Fragment: w.Fragment(),
		})
	}

	return res, nil
}

// SheetColumns Região, Período, прочие колонки по алфавиту, Categorias, Valor.
func SheetColumns(observations []*domain.Observation) []string {
	fixed := map[string]bool{
		sidra.RegionColumn:   true,
		sidra.PeriodColumn:   true,
		sidra.CategoryColumn: true,
		sidra.ValueColumn:    true,
	}

	present := make(map[string]bool)
	var rest []string
	for _, o := range observations {
		for name := range o.Fields {
			if present[name] {
				continue
			}
			present[name] = true
			if !fixed[name] {
				rest = append(rest, name)
			}
		}
	}
	sort.Strings(rest)

	columns := make([]string, 0, len(rest)+4)
	for _, name := range []string{sidra.RegionColumn, sidra.PeriodColumn} {
		if present[name] {
			columns = append(columns, name)
		}
	}
	columns = append(columns, rest...)
	if present[sidra.CategoryColumn] {
		columns = append(columns, sidra.CategoryColumn)
	}

	return append(columns, sidra.ValueColumn)
}

// GroupClassifications собирает плоские строки категорий обратно по классификациям.
func GroupClassifications(rows []*domain.CategoryRow) []domain.Classification {
	var res []domain.Classification
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.ClassificationID]
		if !ok {
			i = len(res)
			index[row.ClassificationID] = i
			res = append(res, domain.Classification{ID: row.ClassificationID, Name: row.ClassificationName})
		}
		res[i].Categories = append(res[i].Categories, domain.Category{ID: row.ID, Name: row.Name})
	}
	return res
}
