// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault converts a query value to an int. Empty, non-numeric and
// non-positive values yield def, so "page=abc" and "page=0" behave like an
// absent parameter.
//
// Example:
//
//	n := utils.AtoiDefault("42", 1)  // returns 42
//	n = utils.AtoiDefault("", 10)    // returns 10
//	n = utils.AtoiDefault("x", 5)    // returns 5
//	n = utils.AtoiDefault("-3", 1)   // returns 1
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
