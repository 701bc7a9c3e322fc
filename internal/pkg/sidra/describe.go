package sidra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/constants"
)

// Describe скачивает и разбирает страницу desctabapi.aspx?c={id}.
func (c *Client) Describe(ctx context.Context, tableID int64) (*domain.Description, error) {
	url := fmt.Sprintf("%s?c=%d", c.cfg.DescriptionURL, tableID)
	body, err := c.get(ctx, endpointDescription, url)
	if err != nil {
		return nil, fmt.Errorf("get description: %w", err)
	}

	return ParseDescription(bytes.NewReader(body), tableID)
}

func ParseDescription(r io.Reader, tableID int64) (*domain.Description, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	content := doc.Find("div#pnlConteudo")
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: table %d: no description content", constants.ErrDBNotFound, tableID)
	}

	span := func(id string) string {
		return strings.TrimSpace(content.Find("span#" + id).First().Text())
	}

	desc := &domain.Description{
		TableID:          tableID,
		Name:             span("lblNomeTabela"),
		PeriodType:       span("lblNomePeriodo"),
		AvailablePeriods: span("lblPeriodoDisponibilidade"),
		LastUpdate:       span("lblDataAtualizacao"),
		Survey:           span("lblNomePesquisa"),
		Subject:          span("lblNomeAssunto"),
		Source:           span("lblFonte"),
		Note:             span("lblTextoDescricao"),
	}

	if cls := doc.Find(`span[id^="lstClassificacoes_lblIdClassificacao_"]`).First(); cls.Length() > 0 {
		desc.Classifier = "C" + strings.TrimSpace(cls.Text())
	}

	var levels []string
	doc.Find(`span[id^="lstNiveisTerritoriais_lblIdNivelterritorial_"]`).Each(func(_ int, s *goquery.Selection) {
		levels = append(levels, "N"+strings.TrimSpace(s.Text()))
	})
	desc.TerritorialLevels = strings.Join(levels, ", ")

	return desc, nil
}
