package sidra

import (
	"fmt"
	"strings"

	"github.com/ougirez/sidra/internal/domain"
)

const (
	DefaultValuesURL = "https://apisidra.ibge.gov.br/values"

	// формат с именами, 4 знака после запятой, с заголовком
	queryDirectives = "/f/n/d/4/h/y"
)

type CompileParams struct {
	TableID              int64
	VariableID           int64
	ClassificationFilter string
	TerritorialLevels    []string
	Frequency            domain.Frequency
	PeriodStart          string
	PeriodEnd            string
	LatestOnly           bool
}

// Compiler собирает URL запросов к /values.
type Compiler struct {
	baseURL   string
	territory *TerritoryMapper
}

func NewCompiler(baseURL string, territory *TerritoryMapper) *Compiler {
	if baseURL == "" {
		baseURL = DefaultValuesURL
	}
	if territory == nil {
		territory = NewTerritoryMapper("", "")
	}
	return &Compiler{baseURL: strings.TrimRight(baseURL, "/"), territory: territory}
}

// Compile возвращает декартово произведение территорий и окон периода,
// территории во внешнем цикле. unmapped коды уровней отдаются вызывающему.
func (c *Compiler) Compile(p CompileParams) (requests []domain.QueryRequest, unmapped []string, err error) {
	territories, unmapped := c.territory.ExpandLevels(p.TerritorialLevels)

	var periods []string
	if p.LatestOnly {
		periods = []string{LatestWindowFragment}
	} else {
		windows, err := Windows(p.Frequency, p.PeriodStart, p.PeriodEnd)
		if err != nil {
			return nil, unmapped, fmt.Errorf("Windows, table %d: %w", p.TableID, err)
		}
		periods = make([]string, 0, len(windows))
		for _, w := range windows {
			periods = append(periods, w.Fragment())
		}
	}

	filter := strings.Trim(p.ClassificationFilter, "/")

	requests = make([]domain.QueryRequest, 0, len(territories)*len(periods))
	for _, territory := range territories {
		for _, period := range periods {
			var b strings.Builder
			fmt.Fprintf(&b, "%s/t/%d/%s/v/%d%s", c.baseURL, p.TableID, territory, p.VariableID, period)
			if filter != "" {
				b.WriteString("/")
				b.WriteString(filter)
			}
			b.WriteString(queryDirectives)

			requests = append(requests, domain.QueryRequest{
				URL:        b.String(),
				TableID:    p.TableID,
				VariableID: p.VariableID,
				Territory:  territory,
				Period:     period,
			})
		}
	}

	return requests, unmapped, nil
}

// ClassificationFilter "c{id}/all" по уникальным классификациям в порядке появления.
func ClassificationFilter(categories []domain.CategoryRow) string {
	seen := make(map[int64]struct{})
	parts := make([]string, 0, 2)
	for _, c := range categories {
		if _, ok := seen[c.ClassificationID]; ok || c.ClassificationID == 0 {
			continue
		}
		seen[c.ClassificationID] = struct{}{}
		parts = append(parts, fmt.Sprintf("c%d/all", c.ClassificationID))
	}

	return strings.Join(parts, "/")
}
