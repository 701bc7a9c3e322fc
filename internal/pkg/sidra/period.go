package sidra

import (
	"fmt"
	"strings"
	"time"

	"github.com/ougirez/sidra/internal/domain"
	"github.com/ougirez/sidra/internal/pkg/constants"
)

// LatestWindowFragment запрос только последнего доступного периода.
const LatestWindowFragment = "/p/last"

// максимальная длина окна в месяцах
var maxSpanMonths = map[domain.Frequency]int{
	domain.FrequencyAnnual:    5 * 12,
	domain.FrequencyMonthly:   36,
	domain.FrequencyQuarterly: 12 * 3,
}

var frequencyAliases = map[string]domain.Frequency{
	"anual":      domain.FrequencyAnnual,
	"annual":     domain.FrequencyAnnual,
	"mensal":     domain.FrequencyMonthly,
	"monthly":    domain.FrequencyMonthly,
	"trimestral": domain.FrequencyQuarterly,
	"quarterly":  domain.FrequencyQuarterly,
}

func ParseFrequency(s string) (domain.Frequency, error) {
	f, ok := frequencyAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", constants.ErrUnsupportedFrequency, s)
	}
	return f, nil
}

// Windows режет [start, end] на окна не длиннее допустимого для частоты.
// Квартальные окна заканчиваются на месяце квартала, последнее окно обрезается по end.
func Windows(frequency domain.Frequency, startToken, endToken string) ([]domain.PeriodWindow, error) {
	freq, err := ParseFrequency(string(frequency))
	if err != nil {
		return nil, err
	}

	start, err := parsePeriodToken(freq, startToken)
	if err != nil {
		return nil, err
	}
	end, err := parsePeriodToken(freq, endToken)
	if err != nil {
		return nil, err
	}

	span := maxSpanMonths[freq]
	windows := make([]domain.PeriodWindow, 0, 1)
	for cur := start; !cur.After(end); {
		winEnd := cur.AddDate(0, span, -1)
		if freq == domain.FrequencyQuarterly {
			winEnd = quarterEnd(winEnd)
		}
		if winEnd.After(end) {
			winEnd = end
		}

		windows = append(windows, domain.PeriodWindow{Frequency: freq, Start: cur, End: winEnd})
		cur = winEnd.AddDate(0, 0, 1)
	}

	return windows, nil
}

func parsePeriodToken(freq domain.Frequency, token string) (time.Time, error) {
	token = strings.TrimSpace(token)

	var (
		t   time.Time
		err error
	)
	switch freq {
	case domain.FrequencyAnnual:
		if len(token) < 4 {
			return time.Time{}, fmt.Errorf("%w: %q", constants.ErrInvalidPeriodToken, token)
		}
		t, err = time.Parse("2006", token[:4])
	default:
		if len(token) != 6 {
			return time.Time{}, fmt.Errorf("%w: %q", constants.ErrInvalidPeriodToken, token)
		}
		t, err = time.Parse("200601", token)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %s", constants.ErrInvalidPeriodToken, token, err.Error())
	}

	return t, nil
}

// quarterEnd последний день ближайшего месяца квартала, не позже t.
// Январь и февраль уходят в декабрь предыдущего года.
func quarterEnd(t time.Time) time.Time {
	month := (int(t.Month()) / 3) * 3
	year := t.Year()
	if month == 0 {
		month = 12
		year--
	}
	// нулевой день следующего месяца = последний день month
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
