package service

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\d{7,15}$`)

// normalizePhone strips separators and a leading plus before matching.
func normalizePhone(phone string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	cleaned = strings.TrimPrefix(cleaned, "+")
	return cleaned, phonePattern.MatchString(cleaned)
}

type fieldErrors map[string]any

func (f fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}
