package normalization

import (
	"strings"
)

// Phone reduces a raw phone string to the canonical 10-digit national number,
// or "" when no valid number can be derived. Country handling is deliberately
// narrow: only India (+91) and US/Canada (+1) prefixes are stripped; other
// international numbers with national lengths other than 10 digits end up
// truncated to their last 10 digits. That limitation is inherited from the
// dashboards' matching behavior and must not be "fixed" here, or historical
// leads would stop matching their own sessions.
func Phone(raw string) string {
	digits := keepDigits(raw)
	if len(digits) < 10 {
		return ""
	}

	cleaned := digits
	if strings.HasPrefix(cleaned, "91") && len(cleaned) > 10 {
		cleaned = cleaned[2:]
	} else if strings.HasPrefix(cleaned, "1") && len(cleaned) == 11 {
		cleaned = cleaned[1:]
	}

	cleaned = strings.TrimLeft(cleaned, "0")
	if len(cleaned) < 10 {
		return ""
	}
	return cleaned[len(cleaned)-10:]
}

// PhonePtr is the pointer-shaped variant used by callers working with
// nullable contact columns.
func PhonePtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	normalized := Phone(*raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func keepDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
