package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ClampLimit turns a ?limit= query value into a page size. Missing or
// non-positive values fall back to def, anything above max is capped.
func ClampLimit(s string, def, max int) int {
	n := StringToInt(s)
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
