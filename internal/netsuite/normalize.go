package netsuite

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// ParseBool reads NetSuite's "T"/"F" flags as well as true/false.
func ParseBool(v Flex) bool {
	switch strings.ToLower(strings.TrimSpace(string(v))) {
	case "t", "true", "yes", "1":
		return true
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"1/2/2006",
	"1/2/2006 3:04 pm",
	"01/02/2006",
}

// ParseDate accepts ISO and M/D/YYYY dates; anything else yields nil.
func ParseDate(v Flex) *time.Time {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseMoney returns zero for missing or malformed amounts.
func ParseMoney(v Flex) decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(string(v)), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseQuantity returns zero for missing or malformed quantities.
func ParseQuantity(v Flex) float64 {
	f, _ := ParseMoney(v).Float64()
	return f
}

// NormalizeEmails splits on commas, semicolons and whitespace, lowercases,
// drops anything without an @ and removes duplicates while keeping order.
func NormalizeEmails(values ...Flex) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		fields := strings.FieldsFunc(string(v), func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
		})
		for _, f := range fields {
			email := strings.ToLower(strings.TrimSpace(f))
			if !strings.Contains(email, "@") {
				continue
			}
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}
	return out
}

// NormalizePhone formats a phone number as E.164. Unparsable input is
// returned trimmed so nothing upstream is lost.
func NormalizePhone(v Flex, region string) string {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return ""
	}
	if region == "" {
		region = "US"
	}
	num, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

// StatusCode reduces "PurchOrd:B" or "B" to the single-letter status.
func StatusCode(v Flex) string {
	s := strings.TrimSpace(string(v))
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToUpper(s)
}
