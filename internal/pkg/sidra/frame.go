package sidra

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/ougirez/sidra/internal/domain"
)

const (
	ValueColumn    = "Valor"
	RegionColumn   = "Região"
	PeriodColumn   = "Período"
	CategoryColumn = "Categorias"

	codeMarker = "(Código)"
)

var columnRenames = map[string]string{
	"Grande Região":        RegionColumn,
	"Município":            RegionColumn,
	"Unidade da Federação": RegionColumn,
	"Brasil":               RegionColumn,
	"Ano":                  PeriodColumn,
	"Trimestre":            PeriodColumn,
	"Mês":                  PeriodColumn,
}

// SheetName имя листа переменной.
func SheetName(variableID int64) string {
	return fmt.Sprintf("Variável %d", variableID)
}

// ParseValues разбирает ответ /values (строка 0 - заголовок) в нормализованный фрейм.
func ParseValues(body []byte) (dataframe.DataFrame, error) {
	records, err := DecodeRecords(body)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return NormalizeRecords(records)
}

// DecodeRecords принимает как массив массивов, так и массив объектов
// с ключами NC, NN, MC, MN, V, D1C, D1N, ...
func DecodeRecords(body []byte) ([][]string, error) {
	var rows []interface{}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([][]string, 0, len(rows))
	var keys []string
	for i, row := range rows {
		switch r := row.(type) {
		case []interface{}:
			rec := make([]string, len(r))
			for j, cell := range r {
				rec[j] = asString(cell)
			}
			records = append(records, rec)
		case map[string]interface{}:
			if keys == nil {
				keys = orderedKeys(r)
			}
			rec := make([]string, len(keys))
			for j, k := range keys {
				rec[j] = asString(r[k])
			}
			records = append(records, rec)
		default:
			return nil, fmt.Errorf("decode values: unexpected row %d of type %T", i, row)
		}
	}

	return records, nil
}

// NormalizeRecords приводит таблицу к общей схеме: Região, Período, числовой Valor,
// без колонок "(Código)", последняя колонка - Categorias.
func NormalizeRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return dataframe.DataFrame{}, nil
	}

	header := records[0]
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return dataframe.DataFrame{}, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(rec), len(header))
		}
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df = dataframe.New(cols...)
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			// пропуски появляются только при приведении Valor к float
			dataframe.NaNValues([]string{}),
		)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", df.Err)
	}

	for _, name := range df.Names() {
		target, ok := columnRenames[name]
		if !ok || hasColumn(df, target) {
			continue
		}
		df = df.Rename(target, name)
	}

	var codeColumns []string
	for _, name := range df.Names() {
		if strings.Contains(name, codeMarker) {
			codeColumns = append(codeColumns, name)
		}
	}
	if len(codeColumns) > 0 {
		df = df.Drop(codeColumns)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("drop code columns: %w", df.Err)
	}
	if df.Ncol() == 0 {
		return dataframe.DataFrame{}, nil
	}

	if hasColumn(df, ValueColumn) {
		df = df.Mutate(series.New(df.Col(ValueColumn).Records(), series.Float, ValueColumn))
	}

	names := df.Names()
	if last := names[len(names)-1]; last != CategoryColumn && last != ValueColumn && !hasColumn(df, CategoryColumn) {
		df = df.Rename(CategoryColumn, last)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("normalize: %w", df.Err)
	}

	return df, nil
}

// Concat склеивает фреймы в порядке запросов, недостающие колонки заполняются NaN.
func Concat(frames []dataframe.DataFrame) (dataframe.DataFrame, error) {
	var res dataframe.DataFrame
	started := false
	for _, f := range frames {
		if f.Ncol() == 0 {
			continue
		}
		if !started {
			res = f
			started = true
			continue
		}
		res = res.Concat(f)
		if res.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("concat: %w", res.Err)
		}
	}

	return res, nil
}

// Observations строки фрейма для сохранения. NaN в Valor -> nil.
func Observations(tableID, variableID int64, df dataframe.DataFrame) []domain.Observation {
	if df.Ncol() == 0 || df.Nrow() == 0 {
		return nil
	}

	records := df.Records()
	header := records[0]

	var values []float64
	if hasColumn(df, ValueColumn) {
		values = df.Col(ValueColumn).Float()
	}

	res := make([]domain.Observation, 0, df.Nrow())
	for i, rec := range records[1:] {
		obs := domain.Observation{
			TableID:    tableID,
			VariableID: variableID,
			RowNum:     i,
			Fields:     make(map[string]string, len(header)),
		}
		for j, name := range header {
			cell := rec[j]
			if cell == "NaN" {
				cell = ""
			}
			switch name {
			case ValueColumn:
				continue
			case RegionColumn:
				obs.Region = cell
			case PeriodColumn:
				obs.Period = cell
			case CategoryColumn:
				obs.Category = cell
			}
			obs.Fields[name] = cell
		}
		if values != nil && !math.IsNaN(values[i]) {
			v := values[i]
			obs.Value = &v
		}
		res = append(res, obs)
	}

	return res
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

var fixedKeyRank = map[string]int{"NC": 0, "NN": 1, "MC": 2, "MN": 3, "V": 4}

// orderedKeys порядок колонок SIDRA: NC NN MC MN V D1C D1N D2C D2N ...
func orderedKeys(row map[string]interface{}) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}

	rank := func(k string) int {
		if r, ok := fixedKeyRank[k]; ok {
			return r
		}
		if len(k) >= 3 && k[0] == 'D' {
			n, err := strconv.Atoi(k[1 : len(k)-1])
			if err == nil {
				r := 10 + 2*n
				if k[len(k)-1] == 'N' {
					r++
				}
				return r
			}
		}
		return 1 << 20
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	return keys
}
