package section

import (
	"strings"
	"unicode/utf8"
)

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// forwardRunes returns the byte offset n runes after off, capped at len(s).
func forwardRunes(s string, off, n int) int {
	for n > 0 && off < len(s) {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
		n--
	}
	return off
}

// backwardRunes returns the byte offset n runes before off, floored at 0.
func backwardRunes(s string, off, n int) int {
	for n > 0 && off > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:off])
		off -= size
		n--
	}
	return off
}

// sliceFraction returns the runes of s between the fractional positions
// start and end.
func sliceFraction(s string, start, end float64) string {
	runes := []rune(s)
	n := len(runes)
	from := clamp(int(float64(n)*start), 0, n)
	to := clamp(int(float64(n)*end), from, n)
	return string(runes[from:to])
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	return s[backwardRunes(s, len(s), n):]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
