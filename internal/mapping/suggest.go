package mapping

import (
	"regexp"
	"sort"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyPattern = regexp.MustCompile(`^\d+\.?\d*$`)
)

// IsValidEmail reports whether a value looks like an email address
func IsValidEmail(value string) bool {
	return value != "" && emailPattern.MatchString(value)
}

// LooksLikePhone reports whether a value carries at least ten digits
func LooksLikePhone(value string) bool {
	if value == "" {
		return false
	}
	return len(nonDigitPattern.ReplaceAllString(value, "")) >= 10
}

// SuggestMappings proposes identity mappings for a sample source record,
// with data types inferred from the sample values. The caller edits the
// proposals into real mappings.
func SuggestMappings(source map[string]interface{}) []FieldMapping {
	keys := make([]string, 0, len(source))
	for k := range source {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mappings := make([]FieldMapping, 0, len(keys))
	for _, key := range keys {
		mappings = append(mappings, FieldMapping{
			SourceField:        key,
			TargetField:        key,
			DataType:           InferDataType(source[key]),
			TransformationType: TransformNone,
			IsActive:           true,
		})
	}
	return mappings
}

// InferDataType classifies a sample value
func InferDataType(value interface{}) DataType {
	switch v := value.(type) {
	case bool:
		return TypeBoolean
	case float64, int, int64:
		return TypeNumber
	case []interface{}:
		return TypeArray
	case map[string]interface{}:
		return TypeObject
	case string:
		switch {
		case IsValidEmail(v):
			return TypeEmail
		case LooksLikePhone(v):
			return TypePhone
		case currencyPattern.MatchString(v):
			return TypeCurrency
		default:
			return TypeString
		}
	default:
		return TypeString
	}
}
