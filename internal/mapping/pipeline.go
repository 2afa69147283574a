package mapping

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type transformStatus int

const (
	transformOK transformStatus = iota
	transformLowConfidence
	transformFailed
)

var nonDigitPattern = regexp.MustCompile(`\D`)

// Apply runs the active mappings against a source record in declaration
// order and returns the transformed record plus per-field diagnostics. Later
// mappings may overwrite a target field set by an earlier one.
//
// Apply is deterministic and side-effect free: identical input always yields
// identical output and diagnostics, so the editor's preview action can be
// invoked repeatedly without re-saving.
func Apply(source map[string]interface{}, mappings []FieldMapping) Result {
	result := Result{
		Output:      make(map[string]interface{}),
		Diagnostics: []Diagnostic{},
	}

	for i := range mappings {
		m := &mappings[i]
		if !m.IsActive {
			continue
		}

		value, found := LookupPath(source, m.SourceField)
		if (!found || value == nil) && m.DefaultValue != nil {
			value = m.DefaultValue
			found = true
		}
		if !found || value == nil {
			if m.IsRequired {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Kind:        DiagMissingRequiredField,
					SourceField: m.SourceField,
					TargetField: m.TargetField,
					Message:     fmt.Sprintf("required source field %q has no value", m.SourceField),
				})
			}
			continue
		}

		transformed, status, msg := applyTransform(value, m)

		if status != transformFailed && m.ValidationRules != nil {
			if ruleMsg, ok := checkRules(transformed, m.ValidationRules); !ok {
				status = transformFailed
				msg = ruleMsg
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Kind:        DiagValidationFailed,
					SourceField: m.SourceField,
					TargetField: m.TargetField,
					Message:     ruleMsg,
				})
			}
		}

		switch status {
		case transformOK:
			WritePath(result.Output, m.TargetField, transformed)

		case transformLowConfidence:
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Kind:        DiagLowConfidenceTransform,
				SourceField: m.SourceField,
				TargetField: m.TargetField,
				Message:     msg,
			})
			WritePath(result.Output, m.TargetField, transformed)

		case transformFailed:
			if m.FallbackValue != nil {
				WritePath(result.Output, m.TargetField, m.FallbackValue)
				continue
			}
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Kind:        DiagTransformFailed,
				SourceField: m.SourceField,
				TargetField: m.TargetField,
				Message:     msg,
			})
		}
	}

	return result
}

// applyTransform dispatches on the mapping's transformation type. The
// returned status drives the caller's fallback path; the message explains a
// failure or a low-confidence pass-through.
func applyTransform(value interface{}, m *FieldMapping) (interface{}, transformStatus, string) {
	switch m.TransformationType {
	case TransformNone, "":
		return value, transformOK, ""

	case TransformFormatPhone:
		cfg, _ := m.TransformationConfig.(PhoneConfig)
		return formatPhone(value, cfg)

	case TransformFormatDate:
		cfg, _ := m.TransformationConfig.(DateConfig)
		return formatDate(value, cfg)

	case TransformFormatCurrency:
		cfg, _ := m.TransformationConfig.(CurrencyConfig)
		return formatCurrency(value, cfg)

	case TransformSplitName:
		return splitName(value)

	case TransformObjectMapping:
		cfg, _ := m.TransformationConfig.(ObjectMappingConfig)
		return mapObject(value, cfg)

	case TransformArrayFormat:
		cfg, _ := m.TransformationConfig.(ArrayFormatConfig)
		return formatArray(value, cfg)

	case TransformConditional:
		cfg, ok := m.TransformationConfig.(ConditionalConfig)
		if !ok {
			return nil, transformFailed, "conditional mapping has no conditions configured"
		}
		return conditional(value, cfg)

	default:
		return nil, transformFailed, fmt.Sprintf("unknown transformation type %q", m.TransformationType)
	}
}

func formatPhone(value interface{}, cfg PhoneConfig) (interface{}, transformStatus, string) {
	s := stringify(value)
	digits := nonDigitPattern.ReplaceAllString(s, "")

	switch cfg.Format {
	case "dashed":
		if national, ok := nationalNumber(digits); ok {
			return national[:3] + "-" + national[3:6] + "-" + national[6:], transformOK, ""
		}
		return value, transformLowConfidence, fmt.Sprintf("unexpected digit count %d for phone format", len(digits))

	case "parentheses":
		if national, ok := nationalNumber(digits); ok {
			return "(" + national[:3] + ") " + national[3:6] + "-" + national[6:], transformOK, ""
		}
		return value, transformLowConfidence, fmt.Sprintf("unexpected digit count %d for phone format", len(digits))

	default: // clean
		return digits, transformOK, ""
	}
}

// nationalNumber reduces a digit string to the 10-digit national form,
// stripping a leading country code 1
func nationalNumber(digits string) (string, bool) {
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return digits, true
	}
	return "", false
}

func formatDate(value interface{}, cfg DateConfig) (interface{}, transformStatus, string) {
	inputFormat := cfg.InputFormat
	if inputFormat == "" {
		inputFormat = "%Y-%m-%d"
	}
	outputFormat := cfg.OutputFormat
	if outputFormat == "" {
		outputFormat = "%d/%m/%Y"
	}

	s, ok := value.(string)
	if !ok {
		return nil, transformFailed, "date value is not a string"
	}

	parsed, err := time.Parse(strftimeLayout(inputFormat), s)
	if err != nil {
		return nil, transformFailed, fmt.Sprintf("cannot parse %q with format %q", s, inputFormat)
	}

	return parsed.Format(strftimeLayout(outputFormat)), transformOK, ""
}

func formatCurrency(value interface{}, cfg CurrencyConfig) (interface{}, transformStatus, string) {
	amount, ok := numeric(value)
	if !ok {
		return nil, transformFailed, fmt.Sprintf("cannot interpret %v as a number", value)
	}

	decimals := 2
	if cfg.DecimalPlaces != nil {
		decimals = *cfg.DecimalPlaces
	}

	formatted := strconv.FormatFloat(amount, 'f', decimals, 64)
	if cfg.IncludeSymbol {
		symbol := cfg.Symbol
		if symbol == "" {
			symbol = "$"
		}
		formatted = symbol + formatted
	}

	return formatted, transformOK, ""
}

func splitName(value interface{}) (interface{}, transformStatus, string) {
	s, ok := value.(string)
	if !ok {
		return nil, transformFailed, "name value is not a string"
	}

	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, transformFailed, "name value is empty"
	}

	last := ""
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}

	return map[string]interface{}{"first": parts[0], "last": last}, transformOK, ""
}

func mapObject(value interface{}, cfg ObjectMappingConfig) (interface{}, transformStatus, string) {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, transformFailed, "object_mapping source value is not an object"
	}

	result := make(map[string]interface{})
	for sourceKey, targetKey := range cfg.Mapping {
		if v, exists := obj[sourceKey]; exists {
			result[targetKey] = v
		}
	}

	return result, transformOK, ""
}

func formatArray(value interface{}, cfg ArrayFormatConfig) (interface{}, transformStatus, string) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, transformFailed, "array_format source value is not an array"
	}

	switch cfg.Format {
	case "phone_clean":
		result := make([]interface{}, len(arr))
		for i, item := range arr {
			result[i] = nonDigitPattern.ReplaceAllString(stringify(item), "")
		}
		return result, transformOK, ""

	case "unique":
		seen := make(map[string]bool)
		result := make([]interface{}, 0, len(arr))
		for _, item := range arr {
			key := stringify(item)
			if !seen[key] {
				seen[key] = true
				result = append(result, item)
			}
		}
		return result, transformOK, ""

	case "sorted":
		result := make([]interface{}, len(arr))
		copy(result, arr)
		sort.SliceStable(result, func(i, j int) bool {
			return stringify(result[i]) < stringify(result[j])
		})
		return result, transformOK, ""

	default:
		return arr, transformOK, ""
	}
}

func conditional(value interface{}, cfg ConditionalConfig) (interface{}, transformStatus, string) {
	needle := strings.ToLower(stringify(value))
	candidates := make([]string, 0, len(cfg.Conditions))
	for candidate := range cfg.Conditions {
		candidates = append(candidates, candidate)
	}
	sort.Strings(candidates)
	for _, candidate := range candidates {
		if strings.ToLower(candidate) == needle {
			return cfg.Conditions[candidate], transformOK, ""
		}
	}
	return nil, transformFailed, fmt.Sprintf("no condition matches source value %v", value)
}

// checkRules applies a mapping's optional validation rules to the transformed
// value; the boolean reports whether the value passed
func checkRules(value interface{}, rules *ValidationRules) (string, bool) {
	switch rules.Type {
	case "email":
		if !IsValidEmail(stringify(value)) {
			return fmt.Sprintf("%v is not a valid email address", value), false
		}
	case "phone":
		if !LooksLikePhone(stringify(value)) {
			return fmt.Sprintf("%v is not a valid phone number", value), false
		}
	case "number":
		if _, ok := numeric(value); !ok {
			return fmt.Sprintf("%v is not a number", value), false
		}
	}

	s := stringify(value)
	if rules.MinLength != nil && len(s) < *rules.MinLength {
		return fmt.Sprintf("value is shorter than %d characters", *rules.MinLength), false
	}
	if rules.MaxLength != nil && len(s) > *rules.MaxLength {
		return fmt.Sprintf("value is longer than %d characters", *rules.MaxLength), false
	}

	if rules.MinValue != nil || rules.MaxValue != nil {
		amount, ok := numeric(value)
		if !ok {
			return fmt.Sprintf("%v is not comparable to a numeric bound", value), false
		}
		if rules.MinValue != nil && amount < *rules.MinValue {
			return fmt.Sprintf("value %v is below minimum %v", amount, *rules.MinValue), false
		}
		if rules.MaxValue != nil && amount > *rules.MaxValue {
			return fmt.Sprintf("value %v is above maximum %v", amount, *rules.MaxValue), false
		}
	}

	return "", true
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numeric(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
