package vault

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Term is the start and end of a vault in unix seconds.
type Term struct {
	Start int64
	End   int64
}

// ParseTerm parses both ends of a term with ParseTime and checks their order.
func ParseTerm(start, end string) (Term, error) {
	s, err := ParseTime(start)
	if err != nil {
		return Term{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTime(end)
	if err != nil {
		return Term{}, fmt.Errorf("end: %w", err)
	}
	if e <= s {
		return Term{}, fmt.Errorf("%w: %d <= %d", ErrInvalidTerm, e, s)
	}
	return Term{Start: s, End: e}, nil
}

// ParseTime accepts unix seconds, RFC3339, or a calendar date. Dates and
// timestamps without a zone are read as UTC.
func ParseTime(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty time")
	}

	if isNumeric(input) {
		return strconv.ParseInt(input, 10, 64)
	}

	for _, layout := range dateLayouts {
		if tm, err := time.ParseInLocation(layout, input, time.UTC); err == nil {
			return tm.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", input)
}

func isNumeric(input string) bool {
	for i, r := range input {
		if r == '-' && i == 0 && len(input) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
