package domain

import "github.com/dustin/go-humanize"

// FormatRupiah renders whole rupiah with dot thousands separators, e.g. "Rp 15.000".
func FormatRupiah(amount int64) string {
	if amount < 0 {
		return "-Rp " + humanize.FormatInteger("#.###,", int(-amount))
	}
	return "Rp " + humanize.FormatInteger("#.###,", int(amount))
}
