package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Currency formats a whole-unit amount for display in cost tables.
// Example: Currency(500000, "USD") => "$500,000"
func Currency(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := int64(math.Floor(amount))
	cents := int64(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	head := thousandSep(whole)
	if cents > 0 {
		head += fmt.Sprintf(".%02d", cents)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	switch currency {
	case "", "USD":
		return sign + "$" + head
	default:
		return fmt.Sprintf("%s%s %s", sign, currency, head)
	}
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Phone formats a North American number as "(813) 555-0142". Inputs that do not
// reduce to ten national digits are returned trimmed but otherwise untouched.
func Phone(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return strings.TrimSpace(raw)
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:])
}

// Date formats a publication date for article bylines.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
