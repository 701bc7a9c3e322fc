package dto

// SheetView лист переменной из базы, значения уже отформатированы.
type SheetView struct {
	Name       string     `json:"name"`
	TableID    int64      `json:"table_id"`
	VariableID int64      `json:"variable_id"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
}

type WindowView struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Fragment string `json:"fragment"`
}
