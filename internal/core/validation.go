// internal/core/validation.go
package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidInput marks request values rejected before any query is built.
var ErrInvalidInput = errors.New("invalid input")

// Regular expression for valid page/table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Nights are given as YYYYMMDD, dates as YYYY-MM-DD (time part ignored)
var (
	nightRegex = regexp.MustCompile(`^[0-9]{8}$`)
	dateRegex  = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}`)
	// comma separated list of 5 to 8 digit sequence numbers
	sequenceListRegex = regexp.MustCompile(`^([ ]*[0-9]{5,8}[ ]*,)*[ ]*[0-9]{5,8}[ ]*$`)
)

// IsValidIdentifier checks if a string is a valid identifier (e.g., page name, column key)
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// IsValidNight reports whether s looks like a night in YYYYMMDD format.
func IsValidNight(s string) bool {
	return nightRegex.MatchString(s)
}

// DatePart returns the leading YYYY-MM-DD of s, or false if s does not start with one.
func DatePart(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !dateRegex.MatchString(s) {
		return "", false
	}
	return s[:10], true
}

// ParseSequenceList parses a comma separated list of sequence numbers with
// five to eight digits each.
func ParseSequenceList(raw string) ([]int, error) {
	if !sequenceListRegex.MatchString(raw) {
		return nil, fmt.Errorf("%w: '%s' is not a comma separated list of sequence numbers", ErrInvalidInput, raw)
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out = append(out, n)
	}
	return out, nil
}
