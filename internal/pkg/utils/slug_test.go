package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUtils_Slug(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Índices de preços":                     "indices_de_precos",
		"Agropecuária":                          "agropecuaria",
		"Trabalho e Rendimento - PNAD Contínua": "trabalho_e_rendimento__pnad_continua",
		"População 2022 (estimativa)":           "populacao_2022_estimativa",
		"":                                      "",
	}

	for in, want := range cases {
		require.Equal(t, want, Slug(in), in)
	}
}
