package sidra

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"
)

// FormatConfig правила вывода чисел. Передается явно, без глобальной локали.
type FormatConfig struct {
	DecimalSeparator string
	GroupSeparator   string
	Precision        int32
	Missing          string
}

// PtBR соответствует pt_BR "%.2f" с группировкой разрядов.
var PtBR = FormatConfig{DecimalSeparator: ",", GroupSeparator: ".", Precision: 2, Missing: "-"}

func (c FormatConfig) FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return c.Missing
	}

	s := decimal.NewFromFloat(v).StringFixed(c.Precision)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	if c.GroupSeparator != "" && len(intPart) > 3 {
		var b strings.Builder
		head := len(intPart) % 3
		if head > 0 {
			b.WriteString(intPart[:head])
		}
		for i := head; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteString(c.GroupSeparator)
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	if fracPart == "" {
		return sign + intPart
	}
	return sign + intPart + c.DecimalSeparator + fracPart
}

// FormatRecords строки фрейма с отформатированной колонкой Valor. Первая строка - заголовок.
func (c FormatConfig) FormatRecords(df dataframe.DataFrame) [][]string {
	if df.Ncol() == 0 {
		return nil
	}

	records := df.Records()
	valueIdx := -1
	for i, name := range records[0] {
		if name == ValueColumn {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return records
	}

	values := df.Col(ValueColumn).Float()
	for i := 1; i < len(records); i++ {
		records[i][valueIdx] = c.FormatValue(values[i-1])
	}

	return records
}
