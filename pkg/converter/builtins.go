package converter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	TypeBoolean = "boolean"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeList    = "list"
	TypeObject  = "object"
)

const emptyLiteral = "empty"

var (
	intPattern   = regexp.MustCompile(`^[+-]?(?:0|[1-9](?:[_,. ]?[0-9]+)*)$`)
	floatPattern = regexp.MustCompile(`^[+-]?[0-9]+(?:[_,. ]?[0-9]+)*(?:[eE][+-]?[0-9]+)?$`)
	grouping     = regexp.MustCompile(`[_,. ]`)
)

// Builtins returns a fresh map of the default literal types
func Builtins() map[string]Func {
	return map[string]Func{
		TypeBoolean: Simple(Boolean),
		TypeInt:     Simple(Int),
		TypeFloat:   Simple(Float),
		TypeString:  Simple(String),
		TypeList:    Simple(List),
		TypeObject:  Simple(Object),
	}
}

// Boolean accepts exactly "true" or "false"
func Boolean(text string) (any, error) {
	switch text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return nil, errors.Errorf("invalid boolean literal %q", text)
	}
}

// Int accepts an optionally signed integer with single `_`, `,`, `.` or space
// grouping separators between digits.
func Int(text string) (any, error) {
	if !intPattern.MatchString(text) {
		return nil, errors.Errorf("invalid int literal %q", text)
	}

	n, err := strconv.ParseInt(stripGrouping(text), 10, 64)
	if err != nil {
		return nil, errors.Errorf("invalid int literal %q: %w", text, err)
	}

	return n, nil
}

// Float accepts inf, +inf, -inf, nan and decimal numbers whose decimal
// separator is either `,` or `.`. A mantissa holding more than one of both
// separators cannot be resolved.
func Float(text string) (any, error) {
	switch text {
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}

	if !floatPattern.MatchString(text) {
		return nil, errors.Errorf("invalid float literal %q", text)
	}

	mantissa, exponent := text, ""
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		mantissa, exponent = text[:i], text[i+1:]
	}

	commas := strings.Count(mantissa, ",")
	dots := strings.Count(mantissa, ".")

	if commas > 1 && dots > 1 {
		return nil, errors.Errorf("could not determine decimal separator in float literal %q", text)
	}

	number := stripGrouping(mantissa)
	if sep := decimalSeparator(mantissa, commas, dots); sep != "" {
		i := strings.LastIndex(mantissa, sep)
		number = stripGrouping(mantissa[:i]) + "." + stripGrouping(mantissa[i+1:])
	}

	if exponent != "" {
		number += "e" + exponent
	}

	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return nil, errors.Errorf("invalid float literal %q: %w", text, err)
	}

	return f, nil
}

// decimalSeparator picks the separator that occurs exactly once. When both
// occur once the later one wins. An empty result means every separator is
// grouping.
func decimalSeparator(mantissa string, commas, dots int) string {
	switch {
	case commas == 1 && dots == 1:
		if strings.LastIndex(mantissa, ",") > strings.LastIndex(mantissa, ".") {
			return ","
		}
		return "."
	case commas == 1:
		return ","
	case dots == 1:
		return "."
	default:
		return ""
	}
}

func stripGrouping(s string) string {
	return grouping.ReplaceAllString(s, "")
}

// String passes the text through unchanged
func String(text string) (any, error) {
	return text, nil
}

// List only knows the literal "empty"
func List(text string) (any, error) {
	if text != emptyLiteral {
		return nil, errors.Errorf("unknown list literal %q", text)
	}
	return []any{}, nil
}

// Object only knows the literal "empty"
func Object(text string) (any, error) {
	if text != emptyLiteral {
		return nil, errors.Errorf("unknown object literal %q", text)
	}
	return map[string]any{}, nil
}
