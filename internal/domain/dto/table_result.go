package dto

import (
	"sync"

	"github.com/ougirez/sidra/internal/domain"
)

type InfoRow struct {
	Field string `json:"campo"`
	Value string `json:"informacao"`
}

// TableResult листы одной таблицы, по одному на переменную.
type TableResult struct {
	Table      *domain.Table
	Variables  []domain.Variable
	Categories []domain.CategoryRow
	Info       []InfoRow
	Sheets     []*domain.Sheet

	sheetsMx sync.Mutex
}

func (r *TableResult) PutSheet(sheet *domain.Sheet) {
	r.sheetsMx.Lock()
	defer r.sheetsMx.Unlock()

	for i, s := range r.Sheets {
		if s.Name == sheet.Name {
			r.Sheets[i] = sheet
			return
		}
	}
	r.Sheets = append(r.Sheets, sheet)
}

func (r *TableResult) GetSheet(name string) *domain.Sheet {
	r.sheetsMx.Lock()
	defer r.sheetsMx.Unlock()

	for _, s := range r.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

type HarvestResult struct {
	RunID    string
	Tables   []*TableResult
	Failures map[int64]int

	failuresMx sync.Mutex
}

func NewHarvestResult(runID string, tablesCount int) *HarvestResult {
	return &HarvestResult{
		RunID:    runID,
		Tables:   make([]*TableResult, 0, tablesCount),
		Failures: make(map[int64]int),
	}
}

func (h *HarvestResult) PutFailure(tableID int64, retries int) {
	h.failuresMx.Lock()
	defer h.failuresMx.Unlock()

	h.Failures[tableID] = retries
}

func (h *HarvestResult) FailuresCopy() map[int64]int {
	h.failuresMx.Lock()
	defer h.failuresMx.Unlock()

	res := make(map[int64]int, len(h.Failures))
	for k, v := range h.Failures {
		res[k] = v
	}
	return res
}

type SheetSummary struct {
	Name           string `json:"name"`
	VariableID     int64  `json:"variable_id"`
	Rows           int    `json:"rows"`
	FailedRequests int    `json:"failed_requests"`
}

type TableSummary struct {
	TableID int64          `json:"table_id"`
	Name    string         `json:"name"`
	Sheets  []SheetSummary `json:"sheets"`
}

type HarvestSummary struct {
	RunID    string         `json:"run_id"`
	Tables   []TableSummary `json:"tables"`
	Failures map[int64]int  `json:"failures"`
}

func (h *HarvestResult) Summary() HarvestSummary {
	res := HarvestSummary{
		RunID:    h.RunID,
		Tables:   make([]TableSummary, 0, len(h.Tables)),
		Failures: h.FailuresCopy(),
	}

	for _, t := range h.Tables {
		ts := TableSummary{TableID: t.Table.ID, Name: t.Table.Name}
		for _, s := range t.Sheets {
			ts.Sheets = append(ts.Sheets, SheetSummary{
				Name:           s.Name,
				VariableID:     s.VariableID,
				Rows:           s.Frame.Nrow(),
				FailedRequests: len(s.Failed),
			})
		}
		res.Tables = append(res.Tables, ts)
	}

	return res
}
