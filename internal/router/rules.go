package router

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Rule routes an item to Output when Operation(value1, Value2) holds
type Rule struct {
	Operation Operator    `json:"operation" mapstructure:"operation"`
	Value2    interface{} `json:"value2" mapstructure:"value2"`
	Output    interface{} `json:"output" mapstructure:"output"`
}

// decodeRules converts the resolved rules parameter into rules.
// nil decodes to an empty rule set.
func decodeRules(raw interface{}) ([]Rule, error) {
	if raw == nil {
		return nil, nil
	}

	var rules []Rule
	if err := mapstructure.Decode(raw, &rules); err != nil {
		return nil, fmt.Errorf("%w: rules: %v", ErrInvalidParameter, err)
	}
	return rules, nil
}

// laneIndex converts a resolved lane parameter to an int. Integral numbers
// and numeric strings are accepted.
func laneIndex(name string, v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case int32:
		return int(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidParameter, name, t.String())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidParameter, name, t)
		}
		return i, nil
	}

	if n, ok := number(v); ok {
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidParameter, name, v)
		}
		return int(n), nil
	}

	return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidParameter, name, v)
}

// checkLane validates index against [0, laneCount)
func checkLane(index, laneCount int) error {
	if index < 0 || index >= laneCount {
		return &LaneRangeError{Index: index, Min: 0, Max: laneCount - 1}
	}
	return nil
}
