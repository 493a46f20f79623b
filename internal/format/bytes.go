// Package format provides shared value formatting utilities for opspulse
// displays: byte counts, percentages, and relative times.
package format

import (
	"fmt"
	"strconv"
)

// byteUnits are the supported size suffixes, base 1024, smallest first.
var byteUnits = []string{"B", "KB", "MB", "GB"}

// Bytes renders a byte count using the largest base-1024 unit for which the
// scaled value is at least 1, with two decimal places. Zero is special-cased
// to "0 B". Values above the GB range stay in GB.
func Bytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}

	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", value, byteUnits[unit])
}

// Percent renders a 0-100 percentage with one decimal place and a trailing
// percent sign, e.g. "42.4%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Count renders a non-negative integer count as plain decimal text.
func Count(n int) string {
	return strconv.Itoa(n)
}

// RatePair renders two byte counts separated by a slash, the dashboard's
// network RX/TX display format, e.g. "2.00 KB/0 B".
func RatePair(rx, tx uint64) string {
	return Bytes(rx) + "/" + Bytes(tx)
}
