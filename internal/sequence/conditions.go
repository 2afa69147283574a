package sequence

import "strconv"

// ConditionType names one comparison a conditional sequence can gate a step on
type ConditionType string

const (
	ConditionEquals      ConditionType = "equals"
	ConditionNotEquals   ConditionType = "not_equals"
	ConditionExists      ConditionType = "exists"
	ConditionGreaterThan ConditionType = "greater_than"
	ConditionLessThan    ConditionType = "less_than"
)

// Condition compares one record field against a literal value
type Condition struct {
	Type  ConditionType `json:"type"`
	Value interface{}   `json:"value,omitempty"`
}

// StepConditions maps record field names to the condition each must satisfy
type StepConditions map[string]Condition

// ConditionConfig maps step names to their gating conditions. Steps without
// an entry always execute.
type ConditionConfig map[string]StepConditions

// ShouldExecute reports whether a step should run given the current record.
// All of a step's conditions must hold.
func (c ConditionConfig) ShouldExecute(stepName string, record map[string]interface{}) bool {
	conditions, exists := c[stepName]
	if !exists || len(conditions) == 0 {
		return true
	}

	for field, condition := range conditions {
		value, present := record[field]

		switch condition.Type {
		case ConditionEquals:
			if !looselyEqual(value, condition.Value) {
				return false
			}
		case ConditionNotEquals:
			if looselyEqual(value, condition.Value) {
				return false
			}
		case ConditionExists:
			if !present || value == nil || value == "" {
				return false
			}
		case ConditionGreaterThan:
			left, lok := asFloat(value)
			right, rok := asFloat(condition.Value)
			if !lok || !rok || left <= right {
				return false
			}
		case ConditionLessThan:
			left, lok := asFloat(value)
			right, rok := asFloat(condition.Value)
			if !lok || !rok || left >= right {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// looselyEqual compares two values, treating numbers of different concrete
// types as equal when their float values match
func looselyEqual(a, b interface{}) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
	}
	return a == b
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
