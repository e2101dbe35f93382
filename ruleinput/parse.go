package ruleinput

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ruleforge/ruleengine/ruleschema"
)

// rangeSeparator splits a "lower..upper" raw range encoding.
const rangeSeparator = ".."

// Parse produces a RuleInput for meta from raw. An empty raw string always
// yields Any, regardless of DataType. Otherwise raw is interpreted per
// meta.DataType: a literal for DataTypeString, or a "lower..upper" pair for
// DataTypeNumericRange.
func Parse(meta ruleschema.Column, raw string) (RuleInput, error) {
	if raw == "" {
		return Any(meta.Name), nil
	}

	switch meta.DataType {
	case ruleschema.DataTypeString:
		return NewValue(meta.Name, raw), nil

	case ruleschema.DataTypeNumericRange:
		return parseRange(meta.Name, raw)

	default:
		return RuleInput{}, fmt.Errorf("ruleinput: %w: column %q has unknown data type %q", ErrUnparsable, meta.Name, meta.DataType)
	}
}

func parseRange(column, raw string) (RuleInput, error) {
	idx := strings.Index(raw, rangeSeparator)
	if idx < 0 {
		return RuleInput{}, fmt.Errorf("ruleinput: %w: range %q for column %q missing %q separator", ErrUnparsable, raw, column, rangeSeparator)
	}

	lowerRaw := raw[:idx]
	upperRaw := raw[idx+len(rangeSeparator):]

	lower, err := strconv.ParseFloat(lowerRaw, 64)
	if err != nil {
		return RuleInput{}, fmt.Errorf("ruleinput: %w: lower bound %q for column %q: %v", ErrUnparsable, lowerRaw, column, err)
	}
	upper, err := strconv.ParseFloat(upperRaw, 64)
	if err != nil {
		return RuleInput{}, fmt.Errorf("ruleinput: %w: upper bound %q for column %q: %v", ErrUnparsable, upperRaw, column, err)
	}

	return NewRange(column, lower, upper)
}
