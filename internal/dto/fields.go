package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

// Money columns are DECIMAL(10,2).
const (
	moneyMaxDigits = 10
	moneyPlaces    = 2
)

// Decimal carries a decimal value exactly as the client sent it.  Both
// JSON numbers (150.5) and strings ("150.50") are accepted; parsing and
// range checks happen in validation, so a malformed value becomes a field
// error instead of a body decode failure.
type Decimal string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*d = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*d = Decimal(strings.TrimSpace(v))
	default:
		*d = Decimal(s)
	}
	return nil
}

// DecimalFrom renders a stored amount for PATCH prefill.
func DecimalFrom(v decimal.Decimal) Decimal {
	return Decimal(v.StringFixed(moneyPlaces))
}

// parseMoney parses d and checks it fits DECIMAL(10,2).  The second return
// is the field message when it does not.
func parseMoney(d Decimal) (decimal.Decimal, string) {
	v, err := decimal.NewFromString(string(d))
	if err != nil {
		return decimal.Decimal{}, MsgInvalidNumber
	}
	total, places := digitCounts(v)
	switch {
	case total > moneyMaxDigits:
		return decimal.Decimal{}, fmt.Sprintf("Ensure that there are no more than %d digits in total.", moneyMaxDigits)
	case places > moneyPlaces:
		return decimal.Decimal{}, fmt.Sprintf("Ensure that there are no more than %d decimal places.", moneyPlaces)
	case total-places > moneyMaxDigits-moneyPlaces:
		return decimal.Decimal{}, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", moneyMaxDigits-moneyPlaces)
	}
	return v, ""
}

// digitCounts returns the number of significant digits and of decimal
// places in v as written, so "150.00" counts as 5 digits, 2 places.
func digitCounts(v decimal.Decimal) (total, places int) {
	digits := len(strings.TrimPrefix(v.Coefficient().String(), "-"))
	exp := int(v.Exponent())
	if exp >= 0 {
		return digits + exp, 0
	}
	places = -exp
	if places > digits {
		return places, places
	}
	return digits, places
}

// parseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatDate renders a stored calendar date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
