package domain

// Truncate cuts s to at most max runes. The cut is a hard one, not
// word-aware, so Truncate(Truncate(s, n), n) == Truncate(s, n).
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
