package scheme

import (
	"strconv"
)

func nextInt(x int) int {
	return x + 1
}

func prevInt(x int) int {
	if x <= 0 {
		return 0
	}
	return x - 1
}

// lastDigitRun locates the rightmost maximal run of ASCII digits in s.
func lastDigitRun(s string) (start, end int, ok bool) {
	end = len(s)
	for end > 0 && !isDigit(s[end-1]) {
		end--
	}
	if end == 0 {
		return 0, 0, false
	}
	start = end
	for start > 0 && isDigit(s[start-1]) {
		start--
	}
	return start, end, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// NextText increments the rightmost digit run of s ("pre1" → "pre2").
// Text without digits is returned unchanged.
func NextText(s string) string {
	return replaceDigitRun(s, nextInt)
}

// PrevText decrements the rightmost digit run of s, flooring at 0.
// Text without digits is returned unchanged.
func PrevText(s string) string {
	return replaceDigitRun(s, prevInt)
}

func replaceDigitRun(s string, fn func(int) int) string {
	start, end, ok := lastDigitRun(s)
	if !ok {
		return s
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return s
	}
	return s[:start] + strconv.Itoa(fn(n)) + s[end:]
}
