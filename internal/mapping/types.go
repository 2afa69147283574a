// Package mapping implements the declarative field-transformation pipeline
// that converts a source record into the shape a partner API expects.
package mapping

import (
	"encoding/json"
	"fmt"
)

// TransformationType selects how a mapped value is transformed
type TransformationType string

const (
	TransformNone           TransformationType = "none"
	TransformFormatPhone    TransformationType = "format_phone"
	TransformFormatDate     TransformationType = "format_date"
	TransformFormatCurrency TransformationType = "format_currency"
	TransformSplitName      TransformationType = "split_name"
	TransformObjectMapping  TransformationType = "object_mapping"
	TransformArrayFormat    TransformationType = "array_format"
	TransformConditional    TransformationType = "conditional"
)

// DataType classifies a field's value for mapping suggestions
type DataType string

const (
	TypeString   DataType = "string"
	TypeNumber   DataType = "number"
	TypeBoolean  DataType = "boolean"
	TypeObject   DataType = "object"
	TypeArray    DataType = "array"
	TypeDate     DataType = "date"
	TypeEmail    DataType = "email"
	TypePhone    DataType = "phone"
	TypeCurrency DataType = "currency"
)

// TransformConfig is the typed configuration for one transformation kind.
// The concrete type is selected by the mapping's TransformationType, so each
// transform's settings are statically known and exhaustively handled.
type TransformConfig interface {
	Kind() TransformationType
}

// PhoneConfig configures format_phone
type PhoneConfig struct {
	Format string `json:"format"` // clean, dashed, parentheses
}

func (PhoneConfig) Kind() TransformationType { return TransformFormatPhone }

// DateConfig configures format_date using strftime-style tokens
type DateConfig struct {
	InputFormat  string `json:"input_format"`
	OutputFormat string `json:"output_format"`
}

func (DateConfig) Kind() TransformationType { return TransformFormatDate }

// CurrencyConfig configures format_currency
type CurrencyConfig struct {
	DecimalPlaces *int   `json:"decimal_places,omitempty"`
	IncludeSymbol bool   `json:"include_symbol,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
}

func (CurrencyConfig) Kind() TransformationType { return TransformFormatCurrency }

// ObjectMappingConfig restructures an object value, source key to target key
type ObjectMappingConfig struct {
	Mapping map[string]string `json:"mapping"`
}

func (ObjectMappingConfig) Kind() TransformationType { return TransformObjectMapping }

// ArrayFormatConfig configures array_format
type ArrayFormatConfig struct {
	Format string `json:"format"` // none, phone_clean, unique, sorted
}

func (ArrayFormatConfig) Kind() TransformationType { return TransformArrayFormat }

// ConditionalConfig maps literal source values to literal target values
type ConditionalConfig struct {
	Conditions map[string]interface{} `json:"conditions"`
}

func (ConditionalConfig) Kind() TransformationType { return TransformConditional }

// ValidationRules are optional post-transform checks on a mapped value
type ValidationRules struct {
	Type      string   `json:"type,omitempty"` // email, phone, number
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
}

// FieldMapping converts one source record field into one target field
type FieldMapping struct {
	Name                 string             `json:"name,omitempty"`
	SourceField          string             `json:"source_field"`
	TargetField          string             `json:"target_field"`
	DataType             DataType           `json:"data_type,omitempty"`
	TransformationType   TransformationType `json:"transformation_type"`
	TransformationConfig TransformConfig    `json:"-"`
	IsRequired           bool               `json:"is_required"`
	IsActive             bool               `json:"is_active"`
	DefaultValue         interface{}        `json:"default_value,omitempty"`
	FallbackValue        interface{}        `json:"fallback_value,omitempty"`
	ValidationRules      *ValidationRules   `json:"validation_rules,omitempty"`
}

// MarshalJSON renders transformation_config in the wire shape selected by
// transformation_type
func (m FieldMapping) MarshalJSON() ([]byte, error) {
	type alias FieldMapping
	return json.Marshal(struct {
		alias
		TransformationConfig TransformConfig `json:"transformation_config,omitempty"`
	}{
		alias:                alias(m),
		TransformationConfig: m.TransformationConfig,
	})
}

// UnmarshalJSON decodes transformation_config into the concrete config type
// named by transformation_type
func (m *FieldMapping) UnmarshalJSON(data []byte) error {
	type alias FieldMapping
	aux := struct {
		*alias
		TransformationConfig json.RawMessage `json:"transformation_config"`
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.TransformationConfig) == 0 || string(aux.TransformationConfig) == "null" {
		m.TransformationConfig = nil
		return nil
	}

	cfg, err := decodeTransformConfig(m.TransformationType, aux.TransformationConfig)
	if err != nil {
		return err
	}
	m.TransformationConfig = cfg
	return nil
}

func decodeTransformConfig(kind TransformationType, raw json.RawMessage) (TransformConfig, error) {
	switch kind {
	case TransformFormatPhone:
		var c PhoneConfig
		return c, json.Unmarshal(raw, &c)
	case TransformFormatDate:
		var c DateConfig
		return c, json.Unmarshal(raw, &c)
	case TransformFormatCurrency:
		var c CurrencyConfig
		return c, json.Unmarshal(raw, &c)
	case TransformObjectMapping:
		var c ObjectMappingConfig
		return c, json.Unmarshal(raw, &c)
	case TransformArrayFormat:
		var c ArrayFormatConfig
		return c, json.Unmarshal(raw, &c)
	case TransformConditional:
		var c ConditionalConfig
		return c, json.Unmarshal(raw, &c)
	case TransformNone, TransformSplitName, "":
		// these kinds take no configuration; tolerate and discard one
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown transformation type %q", kind)
	}
}

// DiagnosticKind identifies a per-field pipeline diagnostic
type DiagnosticKind string

const (
	DiagMissingRequiredField   DiagnosticKind = "missing_required_field"
	DiagTransformFailed        DiagnosticKind = "transform_failed"
	DiagLowConfidenceTransform DiagnosticKind = "low_confidence_transform"
	DiagValidationFailed       DiagnosticKind = "validation_failed"
)

// Diagnostic describes one mapping the pipeline could not fully resolve
type Diagnostic struct {
	Kind        DiagnosticKind `json:"kind"`
	SourceField string         `json:"source_field"`
	TargetField string         `json:"target_field"`
	Message     string         `json:"message"`
}

// Result is the pipeline output: the transformed record plus whatever could
// not be resolved
type Result struct {
	Output      map[string]interface{} `json:"output"`
	Diagnostics []Diagnostic           `json:"diagnostics"`
}
