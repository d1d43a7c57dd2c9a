package compiler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	currencySymbol    = "$"
	defaultDateLayout = "January 2, 2006"
)

// numberPrinter provides thousands grouping for numeric verbs.
var numberPrinter = message.NewPrinter(language.English)

// Filter is a pure transform applied to a resolved binding value.
type Filter func(value any) any

var builtinFilters = map[string]Filter{
	"currency":  func(v any) any { return FormatCurrency(v) },
	"number":    func(v any) any { return FormatNumber(v, 2) },
	"date":      func(v any) any { return FormatDate(v, defaultDateLayout) },
	"uppercase": func(v any) any { return strings.ToUpper(stringify(v)) },
	"lowercase": func(v any) any { return strings.ToLower(stringify(v)) },
}

// applyFilters runs the named filters left-to-right. Unknown names pass the
// value through unchanged.
func applyFilters(value any, names []string) any {
	for _, name := range names {
		if filter, ok := builtinFilters[name]; ok {
			value = filter(value)
		}
	}
	return value
}

// FormatCurrency renders a numeric value as e.g. "$1,234.50". Values that
// cannot be coerced to a number are returned in their literal string form.
func FormatCurrency(value any) string {
	num, ok := toFloat(value)
	if !ok {
		return stringify(value)
	}
	return currencySymbol + numberPrinter.Sprintf("%.2f", num)
}

// FormatNumber renders a numeric value with thousands separators and the
// given number of decimal places, no symbol.
func FormatNumber(value any, decimals int) string {
	num, ok := toFloat(value)
	if !ok {
		return stringify(value)
	}
	if decimals < 0 {
		decimals = 0
	}
	verb := fmt.Sprintf("%%.%df", decimals)
	return numberPrinter.Sprintf(verb, num)
}

// FormatDate parses an ISO-8601-like string (trailing Z accepted as UTC) and
// renders it with the given layout. Unparsable values are returned in their
// literal string form.
func FormatDate(value any, layout string) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(layout)
	case string:
		if t, ok := parseISODate(v); ok {
			return t.Format(layout)
		}
	}
	return stringify(value)
}

var isoDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISODate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toFloat coerces JSON-like values to a float64. Booleans are deliberately
// not numbers here.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case json.Number:
		num, err := v.Float64()
		return num, err == nil
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return num, err == nil
	default:
		return 0, false
	}
}

// stringify renders a value the way it appears in compiled output. Integral
// floats print without a decimal point so JSON numbers like 5 come out as "5".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) && v > -1e15 && v < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return stringify(float64(v))
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
