package testutil

import (
	"sequence-engine/internal/mapping"
	"sequence-engine/internal/sequence"
)

// StepBuilder helps build test steps
type StepBuilder struct {
	step sequence.Step
}

// NewStepBuilder creates a new step builder with a valid default step
func NewStepBuilder() *StepBuilder {
	return &StepBuilder{
		step: sequence.Step{
			Name:            "test-step",
			IntegrationType: sequence.IntegrationLeadSubmission,
			Endpoint:        "https://api.example.com/submit",
			HTTPMethod:      "POST",
			AuthType:        sequence.AuthNone,
			IsActive:        true,
		},
	}
}

func (b *StepBuilder) WithName(name string) *StepBuilder {
	b.step.Name = name
	return b
}

func (b *StepBuilder) WithEndpoint(endpoint string) *StepBuilder {
	b.step.Endpoint = endpoint
	return b
}

func (b *StepBuilder) WithMethod(method string) *StepBuilder {
	b.step.HTTPMethod = method
	return b
}

func (b *StepBuilder) WithOrder(order int) *StepBuilder {
	b.step.SequenceOrder = order
	return b
}

func (b *StepBuilder) WithAuth(authType sequence.AuthType, config sequence.AuthConfig) *StepBuilder {
	b.step.AuthType = authType
	b.step.AuthConfig = config
	return b
}

func (b *StepBuilder) WithDependsOn(fields map[string]string) *StepBuilder {
	b.step.DependsOnFields = fields
	return b
}

func (b *StepBuilder) WithOutputFields(selectors ...string) *StepBuilder {
	b.step.OutputFields = selectors
	return b
}

func (b *StepBuilder) WithActive(active bool) *StepBuilder {
	b.step.IsActive = active
	return b
}

func (b *StepBuilder) WithBodyTemplate(template string) *StepBuilder {
	if b.step.RequestSchema == nil {
		b.step.RequestSchema = &sequence.RequestSchema{}
	}
	b.step.RequestSchema.Template = template
	return b
}

func (b *StepBuilder) WithHeaders(headers map[string]string) *StepBuilder {
	b.step.RequestHeaders = headers
	return b
}

func (b *StepBuilder) Build() sequence.Step {
	return b.step
}

// SequenceBuilder helps build test sequences
type SequenceBuilder struct {
	seq *sequence.Sequence
}

// NewSequenceBuilder creates a new sequence builder with a valid default
// sequential sequence
func NewSequenceBuilder() *SequenceBuilder {
	return &SequenceBuilder{
		seq: &sequence.Sequence{
			Name:          "test-sequence",
			SequenceType:  "lead_submission",
			ExecutionMode: sequence.ModeSequential,
			StopOnError:   true,
			IsActive:      true,
		},
	}
}

func (b *SequenceBuilder) WithName(name string) *SequenceBuilder {
	b.seq.Name = name
	return b
}

func (b *SequenceBuilder) WithMode(mode sequence.ExecutionMode) *SequenceBuilder {
	b.seq.ExecutionMode = mode
	return b
}

func (b *SequenceBuilder) WithConditions(config sequence.ConditionConfig) *SequenceBuilder {
	b.seq.ConditionConfig = config
	return b
}

func (b *SequenceBuilder) WithSteps(steps ...sequence.Step) *SequenceBuilder {
	b.seq.Steps = steps
	return b
}

func (b *SequenceBuilder) AddStep(step sequence.Step) *SequenceBuilder {
	b.seq.Steps = append(b.seq.Steps, step)
	return b
}

func (b *SequenceBuilder) Build() *sequence.Sequence {
	b.seq.Renumber()
	return b.seq
}

// MappingBuilder helps build test field mappings
type MappingBuilder struct {
	m mapping.FieldMapping
}

// NewMappingBuilder creates a new mapping builder with an active identity
// mapping
func NewMappingBuilder(source, target string) *MappingBuilder {
	return &MappingBuilder{
		m: mapping.FieldMapping{
			SourceField:        source,
			TargetField:        target,
			TransformationType: mapping.TransformNone,
			IsActive:           true,
		},
	}
}

func (b *MappingBuilder) WithTransform(t mapping.TransformationType, config mapping.TransformConfig) *MappingBuilder {
	b.m.TransformationType = t
	b.m.TransformationConfig = config
	return b
}

func (b *MappingBuilder) WithRequired(required bool) *MappingBuilder {
	b.m.IsRequired = required
	return b
}

func (b *MappingBuilder) WithActive(active bool) *MappingBuilder {
	b.m.IsActive = active
	return b
}

func (b *MappingBuilder) WithDefault(value interface{}) *MappingBuilder {
	b.m.DefaultValue = value
	return b
}

func (b *MappingBuilder) WithFallback(value interface{}) *MappingBuilder {
	b.m.FallbackValue = value
	return b
}

func (b *MappingBuilder) WithValidation(rules *mapping.ValidationRules) *MappingBuilder {
	b.m.ValidationRules = rules
	return b
}

func (b *MappingBuilder) Build() mapping.FieldMapping {
	return b.m
}
