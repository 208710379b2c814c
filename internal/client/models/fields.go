package models

import (
	"errors"
	"strconv"
	"strings"
)

var ErrIncorrectField = errors.New("field must be name=value")

// FieldsFromArgs turns name=value arguments into a JSON-ready map. Values
// that parse as integers or booleans are sent typed, "null" becomes JSON
// null, anything else is kept as a string. Quote a value ('"42"') to force
// a string.
func FieldsFromArgs(args []string) (map[string]any, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectField
		}
		fields[name] = parseValue(value)
	}
	return fields, nil
}

func parseValue(s string) any {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
