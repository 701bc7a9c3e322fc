package sidra

import (
	"testing"

	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/stretchr/testify/require"
)

func TestSidra_Compiler_Compile(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler("http://sidra.test/values/", NewTerritoryMapper("", ""))

	t.Run("url with classification filter", func(t *testing.T) {
		t.Parallel()

		requests, unmapped, err := compiler.Compile(CompileParams{
			TableID:              1419,
			VariableID:           63,
			ClassificationFilter: "c315/all",
			TerritorialLevels:    []string{"N1", "N6"},
			Frequency:            domain.FrequencyMonthly,
			PeriodStart:          "201201",
			PeriodEnd:            "201403",
		})
		require.NoError(t, err)
		require.Empty(t, unmapped)
		require.Len(t, requests, 2)

		require.Equal(t, "http://sidra.test/values/t/1419/N1/1/v/63/p/201201-201403/c315/all/f/n/d/4/h/y", requests[0].URL)
		require.Equal(t, "http://sidra.test/values/t/1419/N6/2200053,2211704/v/63/p/201201-201403/c315/all/f/n/d/4/h/y", requests[1].URL)
		require.Equal(t, domain.QueryRequest{
			URL:        requests[0].URL,
			TableID:    1419,
			VariableID: 63,
			Territory:  "N1/1",
			Period:     "/p/201201-201403",
		}, requests[0])
	})

	t.Run("url without classification filter", func(t *testing.T) {
		t.Parallel()

		requests, _, err := compiler.Compile(CompileParams{
			TableID:           6579,
			VariableID:        9324,
			TerritorialLevels: []string{"N3"},
			Frequency:         domain.FrequencyAnnual,
			PeriodStart:       "2001",
			PeriodEnd:         "2003",
		})
		require.NoError(t, err)
		require.Equal(t, []domain.QueryRequest{{
			URL:        "http://sidra.test/values/t/6579/N3/22/v/9324/p/2001-2003/f/n/d/4/h/y",
			TableID:    6579,
			VariableID: 9324,
			Territory:  "N3/22",
			Period:     "/p/2001-2003",
		}}, requests)
		require.NotContains(t, requests[0].URL, "/c")
	})

	t.Run("territories outer, periods inner", func(t *testing.T) {
		t.Parallel()

		requests, _, err := compiler.Compile(CompileParams{
			TableID:           5932,
			VariableID:        6561,
			TerritorialLevels: []string{"N1", "N3", "N6"},
			Frequency:         domain.FrequencyQuarterly,
			PeriodStart:       "200001",
			PeriodEnd:         "201212",
		})
		require.NoError(t, err)
		require.Len(t, requests, 3*5)

		for i, r := range requests {
			require.Equal(t, []string{"N1/1", "N3/22", "N6/2200053,2211704"}[i/5], r.Territory)
		}
		require.Equal(t, "/p/200001-200212", requests[5].Period)
		require.Equal(t, "/p/201201-201212", requests[14].Period)
	})

	t.Run("latest only", func(t *testing.T) {
		t.Parallel()

		requests, _, err := compiler.Compile(CompileParams{
			TableID:           1419,
			VariableID:        63,
			TerritorialLevels: []string{"N1"},
			Frequency:         domain.FrequencyMonthly,
			PeriodStart:       "bad",
			PeriodEnd:         "bad",
			LatestOnly:        true,
		})
		require.NoError(t, err)
		require.Len(t, requests, 1)
		require.Equal(t, "http://sidra.test/values/t/1419/N1/1/v/63/p/last/f/n/d/4/h/y", requests[0].URL)
	})

	t.Run("unmapped levels are reported", func(t *testing.T) {
		t.Parallel()

		requests, unmapped, err := compiler.Compile(CompileParams{
			TableID:           1419,
			VariableID:        63,
			TerritorialLevels: []string{"N1", "N7", "N102"},
			Frequency:         domain.FrequencyMonthly,
			PeriodStart:       "201201",
			PeriodEnd:         "201212",
		})
		require.NoError(t, err)
		require.Len(t, requests, 1)
		require.Equal(t, []string{"N7", "N102"}, unmapped)
	})

	t.Run("window errors propagate", func(t *testing.T) {
		t.Parallel()

		_, _, err := compiler.Compile(CompileParams{
			TableID:           1419,
			VariableID:        63,
			TerritorialLevels: []string{"N1"},
			Frequency:         domain.FrequencyMonthly,
			PeriodStart:       "2012",
			PeriodEnd:         "201212",
		})
		require.ErrorIs(t, err, constants.ErrInvalidPeriodToken)
	})

	t.Run("default base url", func(t *testing.T) {
		t.Parallel()

		requests, _, err := NewCompiler("", nil).Compile(CompileParams{
			TableID:           1419,
			VariableID:        63,
			TerritorialLevels: []string{"N1"},
			Frequency:         domain.FrequencyMonthly,
			PeriodStart:       "201201",
			PeriodEnd:         "201201",
		})
		require.NoError(t, err)
		require.Equal(t, DefaultValuesURL+"/t/1419/N1/1/v/63/p/201201-201201/f/n/d/4/h/y", requests[0].URL)
	})
}

func TestSidra_ClassificationFilter(t *testing.T) {
	t.Parallel()

	filter := ClassificationFilter([]domain.CategoryRow{
		{ClassificationID: 315, ID: 7169},
		{ClassificationID: 315, ID: 7170},
		{ClassificationID: 0, ID: 1},
		{ClassificationID: 12, ID: 3},
	})
	require.Equal(t, "c315/all/c12/all", filter)
	require.Empty(t, ClassificationFilter(nil))
}
