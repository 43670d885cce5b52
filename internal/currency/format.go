package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"MXN": "MX$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"RUB": "₽",
	"IDR": "Rp",
}

// zero-decimal currencies
var wholeUnits = map[string]bool{
	"JPY": true,
	"IDR": true,
}

// Format renders amount for display, e.g. "$1,234.50" or "-€12.00".
// Unknown codes are rendered with the code as a suffix.
func Format(amount decimal.Decimal, code string) string {
	code = normalize(code)

	places := int32(2)
	if wholeUnits[code] {
		places = 0
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	number := groupThousands(amount.StringFixed(places))

	if symbol, ok := symbols[code]; ok {
		return sign + symbol + number
	}
	return sign + number + " " + code
}

func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}
