package sidra

const metadata1419 = `{
	"id": 1419,
	"nome": "IPCA - Variação mensal, acumulada no ano, acumulada em 12 meses e peso mensal",
	"URL": "https://sidra.ibge.gov.br/tabela/1419",
	"pesquisa": "Índice Nacional de Preços ao Consumidor Amplo",
	"assunto": "Índices de preços",
	"periodicidade": {"frequencia": "mensal", "inicio": 201201, "fim": 201912},
	"nivelTerritorial": {"Administrativo": ["N1", "N6"], "Especial": [], "IBGE": []},
	"variaveis": [
		{"id": 63, "nome": "IPCA - Variação mensal", "unidade": "%", "sumarizacao": []},
		{"id": 66, "nome": "IPCA - Peso mensal", "unidade": "%", "sumarizacao": ["nivelTerritorial"]}
	],
	"classificacoes": [
		{
			"id": 315,
			"nome": "Geral, grupo, subgrupo, item e subitem",
			"sumarizacao": {"status": false, "excecao": []},
			"categorias": [
				{"id": 7169, "nome": "Índice geral", "unidade": null, "nivel": 0},
				{"id": 7170, "nome": "1.Alimentação e bebidas", "unidade": null, "nivel": 1},
				{"id": 7445, "nome": "2.Habitação", "unidade": null, "nivel": 1}
			]
		}
	]
}`

const valuesArrays = `[
	["Brasil (Código)", "Brasil", "Mês (Código)", "Mês", "Valor (Código)", "Valor", "Geral, grupo, subgrupo, item e subitem (Código)", "Geral, grupo, subgrupo, item e subitem"],
	["1", "Brasil", "201201", "janeiro 2012", "x", "0.56", "7169", "Índice geral"],
	["1", "Brasil", "201202", "fevereiro 2012", "x", "-", "7169", "Índice geral"]
]`

const valuesObjects = `[
	{"NC": "Nível Territorial (Código)", "NN": "Nível Territorial", "MC": "Unidade de Medida (Código)", "MN": "Unidade de Medida", "V": "Valor", "D1C": "Brasil (Código)", "D1N": "Brasil", "D2C": "Mês (Código)", "D2N": "Mês", "D3C": "Variável (Código)", "D3N": "Variável", "D4C": "Geral, grupo, subgrupo, item e subitem (Código)", "D4N": "Geral, grupo, subgrupo, item e subitem"},
	{"D4N": "Índice geral", "D4C": "7169", "D3N": "IPCA - Variação mensal", "D3C": "63", "D2N": "janeiro 2012", "D2C": "201201", "D1N": "Brasil", "D1C": "1", "V": "0.56", "MN": "%", "MC": "2", "NN": "Brasil", "NC": "1"}
]`

const description1419 = `<html><body>
<div id="pnlConteudo">
	<span id="lblNomeTabela">Tabela 1419 - IPCA - Variação mensal</span>
	<span id="lblNomePeriodo">Mensal</span>
	<span id="lblPeriodoDisponibilidade">janeiro 2012 a dezembro 2019</span>
	<span id="lblDataAtualizacao">10/01/2020</span>
	<span id="lblNomePesquisa">Índice Nacional de Preços ao Consumidor Amplo</span>
	<span id="lblNomeAssunto">Índices de preços</span>
	<span id="lblFonte">IBGE - Sistema Nacional de Índices de Preços ao Consumidor</span>
	<span id="lblTextoDescricao"> Notas da tabela </span>
	<table>
		<tr><td><span id="lstClassificacoes_lblIdClassificacao_0">315</span></td></tr>
		<tr><td><span id="lstNiveisTerritoriais_lblIdNivelterritorial_0">1</span></td></tr>
		<tr><td><span id="lstNiveisTerritoriais_lblIdNivelterritorial_1">6</span></td></tr>
	</table>
</div>
</body></html>`
