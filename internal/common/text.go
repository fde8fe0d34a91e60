package common

import (
	"fmt"
	"strings"
)

// Required trims v and fails with ErrBlankField when nothing is left.
func Required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s %w", field, ErrBlankField)
	}
	return v, nil
}
