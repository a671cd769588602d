package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)
	reNonDigit = regexp.MustCompile(`\D`)
	reDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reURL      = regexp.MustCompile(`^https?://\S{1,500}$`)
)

// Local WhatsApp numbers accepted at checkout; E.164 caps a full number at 15 digits.
const (
	MinPhoneDigits = 9
	MaxPhoneDigits = 15
)

// MaxToppings caps how many toppings one cart line may carry.
const MaxToppings = 5

// Digits strips every non-digit character.
func Digits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// Phone returns the digits of a local number and whether there are enough of them.
func Phone(s string) (string, bool) {
	d := Digits(s)
	return d, len(d) >= MinPhoneDigits && len(d) <= MaxPhoneDigits
}

// ID validates a simple resource identifier (product / cart item ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name trims a displayable name; only a blank name is rejected. Long names are clipped to max bytes.
func Name(s string, max int) (string, bool) {
	s = Text(s, max)
	return s, s != ""
}

// Text trims optional free text and clips it to at most max bytes without splitting a character.
func Text(s string, max int) string {
	return strings.TrimSpace(clip(strings.TrimSpace(s), max))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// Price parses a non-negative whole-rupiah amount.
func Price(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Stock parses a tracked stock counter. Empty input means unlimited (nil).
func Stock(s string) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}

// Toppings splits a comma separated list, dropping blanks and duplicates.
func Toppings(s string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Date checks the YYYY-MM-DD shape used for delivery dates.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDate.MatchString(s)
}

// URL accepts an empty value or an absolute http(s) URL.
func URL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reURL.MatchString(s)
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 72
}
