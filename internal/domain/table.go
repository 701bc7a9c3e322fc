package domain

import "time"

type Frequency string

const (
	FrequencyAnnual    Frequency = "anual"
	FrequencyMonthly   Frequency = "mensal"
	FrequencyQuarterly Frequency = "trimestral"
)

// Table метаданные одной таблицы SIDRA после нормализации.
type Table struct {
	ID                int64             `db:"id" json:"id"`
	Name              string            `db:"name" json:"name"`
	Subject           string            `db:"subject" json:"subject"`
	SubjectSlug       string            `db:"subject_slug" json:"subject_slug"`
	Survey            string            `db:"survey" json:"survey"`
	URL               string            `db:"url" json:"url"`
	Frequency         Frequency         `db:"frequency" json:"frequency"`
	PeriodStart       string            `db:"period_start" json:"period_start"`
	PeriodEnd         string            `db:"period_end" json:"period_end"`
	TerritorialLevels []string          `db:"territorial_levels" json:"territorial_levels"`
	Attributes        map[string]string `db:"attributes" json:"attributes,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`

	Variables       []Variable       `db:"-" json:"variables,omitempty"`
	Classifications []Classification `db:"-" json:"classifications,omitempty"`
}

type Variable struct {
	TableID       int64    `db:"table_id" json:"table_id"`
	ID            int64    `db:"id" json:"id"`
	Name          string   `db:"name" json:"name"`
	Unit          string   `db:"unit" json:"unit"`
	Summarization []string `db:"summarization" json:"summarization"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Classification struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// CategoryRow категория классификации, развернутая в плоскую строку.
type CategoryRow struct {
	TableID            int64  `db:"table_id" json:"table_id"`
	ClassificationID   int64  `db:"classification_id" json:"classification_id"`
	ClassificationName string `db:"classification_name" json:"classification_name"`
	ID                 int64  `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
}

// Description данные страницы desctabapi.aspx.
type Description struct {
	TableID           int64  `json:"table_id"`
	Name              string `json:"name"`
	PeriodType        string `json:"period_type"`
	Classifier        string `json:"classifier,omitempty"`
	TerritorialLevels string `json:"territorial_levels,omitempty"`
	AvailablePeriods  string `json:"available_periods"`
	LastUpdate        string `json:"last_update"`
	Survey            string `json:"survey"`
	Subject           string `json:"subject"`
	Source            string `json:"source"`
	Note              string `json:"note"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
