package sidra

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"
)

func TestSidra_ParseValues(t *testing.T) {
	t.Parallel()

	t.Run("array rows drop code columns and coerce values", func(t *testing.T) {
		t.Parallel()

		df, err := ParseValues([]byte(valuesArrays))
		require.NoError(t, err)
		require.Equal(t, []string{RegionColumn, PeriodColumn, ValueColumn, CategoryColumn}, df.Names())
		require.Equal(t, 2, df.Nrow())

		values := df.Col(ValueColumn).Float()
		require.InDelta(t, 0.56, values[0], 1e-9)
		require.True(t, math.IsNaN(values[1]))

		require.Equal(t, []string{"Brasil", "Brasil"}, df.Col(RegionColumn).Records())
		require.Equal(t, []string{"janeiro 2012", "fevereiro 2012"}, df.Col(PeriodColumn).Records())
		require.Equal(t, []string{"Índice geral", "Índice geral"}, df.Col(CategoryColumn).Records())
	})

	t.Run("object rows are ordered canonically", func(t *testing.T) {
		t.Parallel()

		df, err := ParseValues([]byte(valuesObjects))
		require.NoError(t, err)
		require.Equal(t, []string{
			"Nível Territorial",
			"Unidade de Medida",
			ValueColumn,
			RegionColumn,
			PeriodColumn,
			"Variável",
			CategoryColumn,
		}, df.Names())
		require.Equal(t, 1, df.Nrow())
		require.Equal(t, []string{"IPCA - Variação mensal"}, df.Col("Variável").Records())
		require.InDelta(t, 0.56, df.Col(ValueColumn).Float()[0], 1e-9)
	})

	t.Run("empty response", func(t *testing.T) {
		t.Parallel()

		df, err := ParseValues([]byte(`[]`))
		require.NoError(t, err)
		require.Zero(t, df.Ncol())
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()

		df, err := ParseValues([]byte(`[["Brasil (Código)", "Brasil", "Ano", "Valor"]]`))
		require.NoError(t, err)
		require.Equal(t, []string{RegionColumn, PeriodColumn, ValueColumn}, df.Names())
		require.Zero(t, df.Nrow())
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()

		_, err := ParseValues([]byte(`{"message": "Tabela não encontrada"}`))
		require.Error(t, err)

		_, err = ParseValues([]byte(`[1, 2]`))
		require.Error(t, err)

		_, err = ParseValues([]byte(`[["a", "b"], ["1"]]`))
		require.Error(t, err)
	})
}

func TestSidra_NormalizeRecords(t *testing.T) {
	t.Parallel()

	t.Run("first territorial column wins the region name", func(t *testing.T) {
		t.Parallel()

		df, err := NormalizeRecords([][]string{
			{"Brasil", "Município", "Valor"},
			{"Brasil", "Teresina - PI", "10"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{RegionColumn, "Município", ValueColumn}, df.Names())
	})

	t.Run("NA text cells are kept as is", func(t *testing.T) {
		t.Parallel()

		df, err := NormalizeRecords([][]string{
			{"Brasil", "Mês", "Valor", "Geral"},
			{"NA", "fevereiro 2012", "NA", "NA"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"NA"}, df.Col(RegionColumn).Records())
		require.Equal(t, []string{"NA"}, df.Col(CategoryColumn).Records())
		require.True(t, math.IsNaN(df.Col(ValueColumn).Float()[0]))

		obs := Observations(1419, 63, df)
		require.Len(t, obs, 1)
		require.Equal(t, "NA", obs[0].Region)
		require.Equal(t, "NA", obs[0].Category)
		require.Nil(t, obs[0].Value)
	})

	t.Run("existing categories column is kept", func(t *testing.T) {
		t.Parallel()

		df, err := NormalizeRecords([][]string{
			{"Categorias", "Ano", "Variável"},
			{"Total", "2020", "População"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{CategoryColumn, PeriodColumn, "Variável"}, df.Names())
	})
}

func TestSidra_Concat(t *testing.T) {
	t.Parallel()

	first, err := ParseValues([]byte(valuesArrays))
	require.NoError(t, err)
	second, err := NormalizeRecords([][]string{
		{"Brasil", "Ano", "Valor"},
		{"Brasil", "2012", "1.5"},
	})
	require.NoError(t, err)

	df, err := Concat([]dataframe.DataFrame{{}, first, second})
	require.NoError(t, err)
	require.Equal(t, []string{RegionColumn, PeriodColumn, ValueColumn, CategoryColumn}, df.Names())
	require.Equal(t, 3, df.Nrow())
	require.InDelta(t, 1.5, df.Col(ValueColumn).Float()[2], 1e-9)

	observations := Observations(1419, 63, df)
	require.Len(t, observations, 3)
	require.Equal(t, "", observations[2].Category)
	require.Equal(t, "2012", observations[2].Period)

	empty, err := Concat(nil)
	require.NoError(t, err)
	require.Zero(t, empty.Ncol())
}

func TestSidra_Observations(t *testing.T) {
	t.Parallel()

	df, err := ParseValues([]byte(valuesArrays))
	require.NoError(t, err)

	observations := Observations(1419, 63, df)
	require.Len(t, observations, 2)

	first := observations[0]
	require.Equal(t, int64(1419), first.TableID)
	require.Equal(t, int64(63), first.VariableID)
	require.Equal(t, 0, first.RowNum)
	require.Equal(t, "Brasil", first.Region)
	require.Equal(t, "janeiro 2012", first.Period)
	require.Equal(t, "Índice geral", first.Category)
	require.NotNil(t, first.Value)
	require.InDelta(t, 0.56, *first.Value, 1e-9)
	require.NotContains(t, first.Fields, ValueColumn)
	require.Equal(t, "Brasil", first.Fields[RegionColumn])

	require.Equal(t, 1, observations[1].RowNum)
	require.Nil(t, observations[1].Value)

	require.Nil(t, Observations(1419, 63, dataframe.DataFrame{}))
}

func TestSidra_OrderedKeys(t *testing.T) {
	t.Parallel()

	keys := orderedKeys(map[string]interface{}{
		"D10N": "", "D2C": "", "V": "", "D1N": "", "NC": "", "MN": "", "D10C": "", "D1C": "", "NN": "", "MC": "", "D2N": "",
	})
	require.Equal(t, []string{"NC", "NN", "MC", "MN", "V", "D1C", "D1N", "D2C", "D2N", "D10C", "D10N"}, keys)
}

func TestSidra_SheetName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Variável 63", SheetName(63))
}
