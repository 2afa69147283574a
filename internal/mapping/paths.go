package mapping

import (
	"strconv"
	"strings"
)

// LookupPath extracts a value from a nested record using a dot-separated path,
// for example LookupPath(data, "user.profile.name"). Array elements can be
// addressed as "items[0].name" or "items.0.name".
func LookupPath(data map[string]interface{}, path string) (interface{}, bool) {
	if path == "" || data == nil {
		return nil, false
	}

	current := interface{}(data)

	for _, part := range strings.Split(path, ".") {
		if current == nil {
			return nil, false
		}

		if open := strings.Index(part, "["); open >= 0 && strings.HasSuffix(part, "]") {
			name := part[:open]
			idx, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil {
				return nil, false
			}
			m, ok := current.(map[string]interface{})
			if !ok {
				return nil, false
			}
			arr, ok := m[name].([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
			continue
		}

		switch v := current.(type) {
		case map[string]interface{}:
			next, exists := v[part]
			if !exists {
				return nil, false
			}
			current = next

		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]

		default:
			return nil, false
		}
	}

	return current, true
}

// WritePath sets a value in a record at a dot-separated path, creating
// intermediate objects as needed. An intermediate that is not an object is
// replaced.
func WritePath(data map[string]interface{}, path string, value interface{}) {
	if path == "" || data == nil {
		return
	}

	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
