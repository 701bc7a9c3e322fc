package sidra

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/domain/dto"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/ougirez/sidra/internal/pkg/utils"
)

// Normalized метаданные таблицы в виде трех плоских отношений.
type Normalized struct {
	Table      *domain.Table
	Variables  []domain.Variable
	Categories []domain.CategoryRow
}

func Normalize(tableID int64, raw []byte) (*Normalized, error) {
	var doc map[string]interface{}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: table %d: %s", constants.ErrIncompleteMetadata, tableID, err.Error())
	}

	return NormalizeDocument(tableID, doc)
}

func NormalizeDocument(tableID int64, doc map[string]interface{}) (*Normalized, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: table %d: empty document", constants.ErrIncompleteMetadata, tableID)
	}
	if tableID == 0 {
		tableID = asInt64(doc["id"])
	}

	periodicity, ok := doc["periodicidade"].(map[string]interface{})
	if !ok {
		return nil, missingField(tableID, "periodicidade")
	}
	frequency, start, end := asString(periodicity["frequencia"]), asString(periodicity["inicio"]), asString(periodicity["fim"])
	if frequency == "" || start == "" || end == "" {
		return nil, missingField(tableID, "periodicidade.frequencia/inicio/fim")
	}

	levelsDoc, ok := doc["nivelTerritorial"].(map[string]interface{})
	if !ok {
		return nil, missingField(tableID, "nivelTerritorial")
	}
	rawLevels, ok := levelsDoc["Administrativo"].([]interface{})
	if !ok {
		return nil, missingField(tableID, "nivelTerritorial.Administrativo")
	}

	rawVariables, ok := doc["variaveis"].([]interface{})
	if !ok {
		return nil, missingField(tableID, "variaveis")
	}

	table := &domain.Table{
		ID:          tableID,
		Name:        asString(doc["nome"]),
		Subject:     asString(doc["assunto"]),
		SubjectSlug: utils.Slug(asString(doc["assunto"])),
		Survey:      asString(doc["pesquisa"]),
		URL:         asString(doc["URL"]),
		Frequency:   domain.Frequency(frequency),
		PeriodStart: start,
		PeriodEnd:   end,
		Attributes:  make(map[string]string),
	}
	for _, l := range rawLevels {
		if s := asString(l); s != "" {
			table.TerritorialLevels = append(table.TerritorialLevels, s)
		}
	}
	// скалярные поля верхнего уровня переносим как есть
	for k, v := range doc {
		switch v.(type) {
		case map[string]interface{}, []interface{}, nil:
			continue
		}
		table.Attributes[k] = asString(v)
	}

	res := &Normalized{Table: table}

	for _, rv := range rawVariables {
		v, ok := rv.(map[string]interface{})
		if !ok {
			continue
		}
		variable := domain.Variable{
			TableID: tableID,
			ID:      asInt64(v["id"]),
			Name:    asString(v["nome"]),
			Unit:    asString(v["unidade"]),
		}
		if sums, ok := v["sumarizacao"].([]interface{}); ok {
			for _, s := range sums {
				variable.Summarization = append(variable.Summarization, asString(s))
			}
		}
		res.Variables = append(res.Variables, variable)
	}

	rawClassifications, _ := doc["classificacoes"].([]interface{})
	for _, rc := range rawClassifications {
		c, ok := rc.(map[string]interface{})
		if !ok {
			continue
		}
		classification := domain.Classification{
			ID:   asInt64(c["id"]),
			Name: asString(c["nome"]),
		}
		categories, _ := c["categorias"].([]interface{})
		for _, rcat := range categories {
			cat, ok := rcat.(map[string]interface{})
			if !ok {
				continue
			}
			category := domain.Category{ID: asInt64(cat["id"]), Name: asString(cat["nome"])}
			classification.Categories = append(classification.Categories, category)
			res.Categories = append(res.Categories, domain.CategoryRow{
				TableID:            tableID,
				ClassificationID:   classification.ID,
				ClassificationName: classification.Name,
				ID:                 category.ID,
				Name:               category.Name,
			})
		}
		table.Classifications = append(table.Classifications, classification)
	}
	table.Variables = res.Variables

	return res, nil
}

var infoHeadFields = []string{"id", "nome", "URL", "pesquisa", "assunto"}

// InfoSheet сводка "Campo / Informação" по таблице.
func InfoSheet(table *domain.Table) []dto.InfoRow {
	rows := make([]dto.InfoRow, 0, len(table.Attributes)+len(table.Variables)+8)

	used := make(map[string]struct{}, len(infoHeadFields))
	for _, k := range infoHeadFields {
		if v, ok := table.Attributes[k]; ok {
			rows = append(rows, dto.InfoRow{Field: k, Value: v})
			used[k] = struct{}{}
		}
	}
	rest := make([]string, 0, len(table.Attributes))
	for k := range table.Attributes {
		if _, ok := used[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		rows = append(rows, dto.InfoRow{Field: k, Value: table.Attributes[k]})
	}

	rows = append(rows,
		dto.InfoRow{Field: "Frequência", Value: string(table.Frequency)},
		dto.InfoRow{Field: "Data Inicial", Value: table.PeriodStart},
		dto.InfoRow{Field: "Data Final", Value: table.PeriodEnd},
		dto.InfoRow{Field: "Nível Territorial", Value: strings.Join(table.TerritorialLevels, ", ")},
		dto.InfoRow{},
		dto.InfoRow{Field: "Variáveis:", Value: "Unidades:"},
	)
	for _, v := range table.Variables {
		rows = append(rows, dto.InfoRow{
			Field: v.Name,
			Value: fmt.Sprintf("%s (Sumarização: %s)", v.Unit, strings.Join(v.Summarization, ", ")),
		})
	}

	return rows
}

func missingField(tableID int64, field string) error {
	return fmt.Errorf("%w: table %d: missing %s", constants.ErrIncompleteMetadata, tableID, field)
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		i, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i
	default:
		return 0
	}
}
