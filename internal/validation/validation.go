// Package validation provides validation functions for the values that cross
// the process boundary: CLI dates, reporting windows, wiki database names and
// named set identifiers.
package validation

import (
	"fmt"
	"time"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// isLower returns true if the byte is a lowercase ASCII letter.
func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// ParseDate parses a YYYY-MM-DD date. The result is midnight UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError(field, value, fmt.Sprintf("not a valid date, expected %s", "YYYY-MM-DD"))
	}
	return t, nil
}

// ValidateWindow checks that the window is not empty or reversed.
func ValidateWindow(w domain.Window) error {
	if !w.End.After(w.Start) {
		return NewValidationError("end", w.End.Format(domain.DateLayout), "must be after start "+w.Start.Format(domain.DateLayout))
	}
	return nil
}

// ValidateDBName validates a wiki database name.
// Database names are lowercase letters, digits and underscores, starting with a letter.
func ValidateDBName(name string) error {
	if name == "" {
		return NewValidationError("dbname", name, "must not be empty")
	}
	if len(name) > 64 {
		return NewValidationError("dbname", name, "must be at most 64 characters")
	}
	if !isLower(name[0]) {
		return NewValidationError("dbname", name, "must start with a lowercase letter")
	}
	for _, b := range []byte(name) {
		if !isLower(b) && !isNum(b) && b != '_' {
			return NewValidationError("dbname", name, "can only contain lowercase letters, digits or underscores")
		}
	}
	return nil
}

// ValidateSetName validates a named set identifier.
// Set names map onto file names, so path separators and dots are rejected.
func ValidateSetName(name string) error {
	if name == "" {
		return NewValidationError("set", name, "must not be empty")
	}
	for _, b := range []byte(name) {
		if !isLower(b) && !isNum(b) && b != '_' && b != '-' && (b < 'A' || b > 'Z') {
			return NewValidationError("set", name, "can only contain letters, digits, underscores or hyphens")
		}
	}
	return nil
}
