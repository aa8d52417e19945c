// internal/reliability/fields.go
package reliability

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

func asMap(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, v != nil
	case DocumentData:
		return v, v != nil
	case MarketData:
		return v, v != nil
	case ManualData:
		return v, v != nil
	default:
		return nil, false
	}
}

// lookup walks nested objects. Any non-object step yields (nil, false).
func lookup(data map[string]interface{}, path ...string) (interface{}, bool) {
	if data == nil || len(path) == 0 {
		return nil, false
	}
	current := interface{}(data)
	for _, key := range path {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// truthy follows JSON-ish presence rules: empty strings, zero numbers, false and null are absent.
func truthy(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func has(data map[string]interface{}, path ...string) bool {
	v, ok := lookup(data, path...)
	return ok && truthy(v)
}

func hasNonEmptyList(data map[string]interface{}, path ...string) bool {
	v, ok := lookup(data, path...)
	if !ok {
		return false
	}
	list, ok := v.([]interface{})
	return ok && len(list) > 0
}

func textLongerThan(data map[string]interface{}, min int, path ...string) bool {
	v, ok := lookup(data, path...)
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && utf8.RuneCountInString(s) > min
}

func parseNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func numberAt(data map[string]interface{}, path ...string) (float64, bool) {
	v, ok := lookup(data, path...)
	if !ok {
		return 0, false
	}
	return parseNumber(v)
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// roundPercent divides a non-negative weighted total by 100, rounding halves up.
func roundPercent(total int) int {
	return (total + 50) / 100
}
