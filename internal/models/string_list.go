package models

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// StringList ensures list fields can be decoded whether written as a single
// string or a sequence of strings in the catalog file.
type StringList []string

// UnmarshalYAML accepts both scalar and sequence nodes.
func (s *StringList) UnmarshalYAML(data []byte) error {
	var values []string
	if err := yaml.Unmarshal(data, &values); err == nil {
		*s = values
		return nil
	}

	var value string
	if err := yaml.Unmarshal(data, &value); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		*s = []string{}
		return nil
	}

	*s = []string{trimmed}
	return nil
}
