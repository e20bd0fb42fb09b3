package analysis

import "fmt"

// FormatZScore renders a z-score as a signed magnitude with a sigma
// suffix, e.g. "-1.73σ" or "+0.42σ".
func FormatZScore(z float64) string {
	return fmt.Sprintf("%+.2fσ", z)
}

// FormatPValue renders a p-value in the conventional buckets, falling back
// to the exact value when above every threshold.
func FormatPValue(p float64) string {
	switch {
	case p < 0.001:
		return "p < 0.001"
	case p < 0.01:
		return "p < 0.01"
	case p < 0.05:
		return "p < 0.05"
	default:
		return fmt.Sprintf("p = %.3f", p)
	}
}
