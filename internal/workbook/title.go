package workbook

import (
	"strconv"
	"strings"
)

// NormalizeTitle turns compact day-month sheet names into readable ranges,
// e.g. "0104-0704" becomes "1/4-7/4". Titles that are not two digit runs
// joined by '-' are returned trimmed and otherwise unchanged.
func NormalizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	parts := strings.Split(title, "-")
	if len(parts) != 2 {
		return title
	}

	formatted := make([]string, len(parts))
	for i, part := range parts {
		f, ok := formatTitlePart(strings.TrimSpace(part))
		if !ok {
			return title
		}
		formatted[i] = f
	}
	return strings.Join(formatted, "-")
}

// formatTitlePart reads a part as day digits followed by month digits. Four
// or more digits split after the second, two digits are one day digit and
// one month digit, and a lone digit is a day in February.
func formatTitlePart(p string) (string, bool) {
	if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", false
	}

	var day, month string
	switch {
	case len(p) > 2:
		day, month = p[:2], p[2:]
	case len(p) == 2:
		day, month = p[:1], p[1:]
	default:
		day, month = p, "2"
	}

	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(d) + "/" + strconv.Itoa(m), true
}
