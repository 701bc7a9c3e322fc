package domain

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// PeriodWindow закрытый интервал [Start, End] одного запроса.
type PeriodWindow struct {
	Frequency Frequency
	Start     time.Time
	End       time.Time
}

func (w PeriodWindow) Fragment() string {
	return fmt.Sprintf("/p/%s-%s", w.token(w.Start), w.token(w.End))
}

func (w PeriodWindow) token(t time.Time) string {
	if w.Frequency == FrequencyAnnual {
		return t.Format("2006")
	}
	return t.Format("200601")
}

type QueryRequest struct {
	URL        string `json:"url"`
	TableID    int64  `json:"table_id"`
	VariableID int64  `json:"variable_id"`
	Territory  string `json:"territory"`
	Period     string `json:"period"`
}

type FetchState string

const (
	FetchStatePending   FetchState = "PENDING"
	FetchStateRetrying  FetchState = "RETRYING"
	FetchStateSuccess   FetchState = "SUCCESS"
	FetchStateExhausted FetchState = "EXHAUSTED"
	// FetchStateFailed неретраибл ошибка, повторов не было.
	FetchStateFailed FetchState = "FAILED"
)

type FetchResult struct {
	Request  QueryRequest
	State    FetchState
	Attempts int
	Frame    dataframe.DataFrame
	Err      error
}

func (r FetchResult) OK() bool {
	return r.State == FetchStateSuccess
}

// Sheet результат одной переменной таблицы.
type Sheet struct {
	Name       string
	VariableID int64
	Frame      dataframe.DataFrame
	Failed     []FetchResult
}

// Observation строка листа в том виде, в котором она хранится в базе.
type Observation struct {
	TableID    int64             `db:"table_id" json:"table_id"`
	VariableID int64             `db:"variable_id" json:"variable_id"`
	RowNum     int               `db:"row_num" json:"row_num"`
	Region     string            `db:"region" json:"region"`
	Period     string            `db:"period" json:"period"`
	Category   string            `db:"category" json:"category"`
	Value      *float64          `db:"value" json:"value"`
	Fields     map[string]string `db:"fields" json:"fields"`
}

type Failure struct {
	TableID   int64     `db:"table_id" json:"table_id"`
	RunID     string    `db:"run_id" json:"run_id"`
	Retries   int       `db:"retries" json:"retries"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
