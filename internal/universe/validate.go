package universe

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the list is usable by the fetcher
func Validate(u *Universe) error {
	if strings.TrimSpace(u.Name) == "" {
		return ValidationError{"name", "required"}
	}
	if len(u.Symbols) == 0 {
		return ValidationError{"symbols", "at least one symbol required"}
	}

	seen := make(map[string]bool, len(u.Symbols))
	for i, s := range u.Symbols {
		field := fmt.Sprintf("symbols[%d]", i)
		if strings.TrimSpace(s) != s || s == "" {
			return ValidationError{field, "must be non-empty without surrounding spaces"}
		}
		if strings.ContainsAny(s, "/\\ ") {
			return ValidationError{field, fmt.Sprintf("%q contains a path separator or space", s)}
		}
		if seen[s] {
			return ValidationError{field, fmt.Sprintf("duplicate symbol %q", s)}
		}
		seen[s] = true
	}
	return nil
}
