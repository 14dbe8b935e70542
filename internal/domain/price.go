package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceRe = regexp.MustCompile(`\d[\d\s\x{00a0}\x{202f}.,]*`)

// ParsePrice извлекает сумму из отображаемой цены вида "1 234,56 €",
// "€12.99" или "20€". Валюта игнорируется.
func ParsePrice(s string) (decimal.Decimal, bool) {
	raw := priceRe.FindString(s)
	if raw == "" {
		return decimal.Zero, false
	}

	raw = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, raw)
	raw = strings.TrimRight(raw, ".,")

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// десятичный разделитель — последний
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		raw = normalizeSeparator(raw, ",")
	case lastDot >= 0:
		raw = normalizeSeparator(raw, ".")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// normalizeSeparator считает sep десятичным, если он встречается один раз и после
// него не больше двух цифр, иначе это разделитель тысяч.
func normalizeSeparator(raw, sep string) string {
	if strings.Count(raw, sep) == 1 && len(raw)-strings.Index(raw, sep)-1 <= 2 {
		return strings.Replace(raw, sep, ".", 1)
	}
	return strings.ReplaceAll(raw, sep, "")
}
