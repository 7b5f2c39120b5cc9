package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseKind converts a kind name ("int", "float", "date", "datetime", "text").
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return KindInt, nil
	case "float", "number", "decimal":
		return KindFloat, nil
	case "date":
		return KindDate, nil
	case "datetime":
		return KindDateTime, nil
	case "text", "string", "":
		return KindText, nil
	}
	return KindText, fmt.Errorf("unknown column kind %q", name)
}

// ParseValue parses a raw string into a value of the given kind.
// Blank input yields nil.
func ParseValue(kind Kind, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, &ParseError{Kind: kind, Value: raw, Err: err}
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
		if err != nil {
			return nil, &ParseError{Kind: kind, Value: raw, Err: err}
		}
		return f, nil
	case KindDate:
		return parseTime(kind, raw, trimmed, dateLayouts)
	case KindDateTime:
		return parseTime(kind, raw, trimmed, append(dateTimeLayouts, dateLayouts...))
	default:
		return raw, nil
	}
}

func parseTime(kind Kind, raw, trimmed string, layouts []string) (any, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return nil, &ParseError{Kind: kind, Value: raw, Err: errors.New("unrecognized layout")}
}

// Stringify renders a value the way it is measured for column widths.
func Stringify(kind Kind, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if kind == KindDate {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
