package landing

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DecodeStringMap decodes a persisted JSONB field/image column.
//
// The stored shape is a flat object of string values. Anything else is
// normalised instead of rejected so one bad key can't lock a mentor out of
// their page:
//   - null or empty column: empty map
//   - numbers and booleans: kept as their JSON text
//   - null values, nested objects and arrays: dropped
//   - a column that is not an object at all: empty map
//
// Every normalisation is reported in issues so callers can log it.
func DecodeStringMap(raw []byte) (map[string]string, []string) {
	out := map[string]string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return out, []string{fmt.Sprintf("column is not a JSON object: %v", err)}
	}

	var issues []string
	for key, value := range obj {
		if string(value) == "null" {
			issues = append(issues, fmt.Sprintf("%s: null value dropped", key))
			continue
		}

		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			out[key] = s
			continue
		}

		var scalar interface{}
		if err := json.Unmarshal(value, &scalar); err != nil {
			issues = append(issues, fmt.Sprintf("%s: undecodable value dropped", key))
			continue
		}

		switch v := scalar.(type) {
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
			issues = append(issues, fmt.Sprintf("%s: number coerced to string", key))
		case bool:
			out[key] = strconv.FormatBool(v)
			issues = append(issues, fmt.Sprintf("%s: boolean coerced to string", key))
		default:
			issues = append(issues, fmt.Sprintf("%s: %T value dropped", key, v))
		}
	}

	return out, issues
}
