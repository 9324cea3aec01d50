package output

import (
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds a float to max 6 decimal places. Keeps snapshot output
// byte-stable across platforms.
func RoundFloat(f float64) float64 {
	const multiplier = 1e6
	return math.Round(f*multiplier) / multiplier
}

// Round1 rounds to 1 decimal place, the precision used for percentages and
// score averages in the snapshot.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Round2 rounds to 2 decimal places, used for ratios and per-conversation rates.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// FormatFloat formats a float with no trailing zeros
func FormatFloat(f float64) string {
	str := strconv.FormatFloat(RoundFloat(f), 'f', 6, 64)
	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")
	return str
}
