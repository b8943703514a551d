package exporter

import (
	"strconv"
)

// formatHours prints durations without trailing zeros: 8, 7.5, 0.25
func formatHours(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
