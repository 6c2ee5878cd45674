package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PercentSaved returns (original-optimized)/original*100. A zero original
// size reports 0.
func PercentSaved(original, optimized int64) float64 {
	return percent(original-optimized, original)
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// FormatPercent renders p with one decimal and drops a trailing ".0".
func FormatPercent(p float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(p, 'f', 1, 64), ".0")
}

var byteUnits = []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes returns a human-readable size in SI units (1 kB = 1000 B).
func FormatBytes(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	if n < 1000 {
		return fmt.Sprintf("%s%d B", sign, n)
	}

	v := float64(n)
	exp := 0
	for v >= 1000 && exp < len(byteUnits)-1 {
		v /= 1000
		exp++
	}

	digits := 0
	switch {
	case v < 10:
		digits = 2
	case v < 100:
		digits = 1
	}
	scale := math.Pow(10, float64(digits))
	v = math.Round(v*scale) / scale

	num := strconv.FormatFloat(v, 'f', digits, 64)
	if digits > 0 {
		num = strings.TrimRight(strings.TrimRight(num, "0"), ".")
	}
	return sign + num + " " + byteUnits[exp]
}

// Describe renders an event as a single status line without styling.
func Describe(ev Event) string {
	switch ev.Kind {
	case ItemSucceeded:
		prefix := fmt.Sprintf("Minifying image %q (%d of %d)", ev.Path, ev.Done, ev.Total)
		if ev.Saved() <= 0 {
			return prefix + " - already optimized"
		}
		return fmt.Sprintf("%s - saved %s - %s%%", prefix, FormatBytes(ev.Saved()), FormatPercent(ev.Percent()))
	case ItemFailed:
		return fmt.Sprintf("Minifying image %q (%d of %d)... Error: %v", ev.Path, ev.Done, ev.Total, ev.Err)
	case RunFinished:
		s := ev.Summary
		return fmt.Sprintf(
			"Successfully compressed images: %d. Unsuccessfully compressed images: %d. "+
				"Total images: %d. Total images size: %s. Total saved size: %s - %s%%.",
			s.Succeeded, s.Failed, s.Total(),
			FormatBytes(s.OriginalBytes), FormatBytes(s.SavedBytes), FormatPercent(s.Percent()),
		)
	default:
		return ""
	}
}
