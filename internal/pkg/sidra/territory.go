package sidra

import (
	"fmt"
	"strings"
)

const (
	DefaultStateCode      = "22"
	DefaultMunicipalities = "2200053,2211704"
)

// TerritoryMapper переводит коды территориальных уровней в сегменты запроса.
type TerritoryMapper struct {
	fragments map[string]string
}

func NewTerritoryMapper(stateCode, municipalities string) *TerritoryMapper {
	if stateCode == "" {
		stateCode = DefaultStateCode
	}
	if municipalities == "" {
		municipalities = DefaultMunicipalities
	}

	return &TerritoryMapper{fragments: map[string]string{
		"N1": "N1/1",
		"N2": "N2/2",
		"N3": fmt.Sprintf("N3/%s", stateCode),
		"N6": fmt.Sprintf("N6/%s", municipalities),
	}}
}

// Expand возвращает сегменты в порядке входных кодов и отдельно коды без сопоставления.
func (m *TerritoryMapper) Expand(codes string) (fragments []string, unmapped []string) {
	seen := make(map[string]struct{})
	for _, code := range strings.Split(codes, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		fragment, ok := m.fragments[code]
		if !ok {
			unmapped = append(unmapped, code)
			continue
		}
		fragments = append(fragments, fragment)
	}

	return fragments, unmapped
}

// ExpandLevels то же, что Expand, для уже разобранного списка уровней.
func (m *TerritoryMapper) ExpandLevels(levels []string) ([]string, []string) {
	return m.Expand(strings.Join(levels, ","))
}
