package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/sidra/internal/pkg/constants"
)

const (
	tableTables       = "datasetpi.sidra_tabelas"
	tableVariables    = "datasetpi.sidra_variaveis"
	tableCategories   = "datasetpi.sidra_categorias"
	tableObservations = "datasetpi.sidra_observacoes"
	tableFailures     = "datasetpi.sidra_falhas"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
